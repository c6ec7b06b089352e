package analyze

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "clean JSON parses unchanged",
			raw:  `{"a": 1, "b": "two"}`,
			want: map[string]any{"a": float64(1), "b": "two"},
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "\n\t  {\"a\": 1}  \n",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "json-tagged fence stripped",
			raw:  "```json\n{\"a\": 1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "plain fence stripped",
			raw:  "```\n{\"a\": 1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "fence with trailing remarks",
			raw:  "```json\n{\"a\": 1}\n```\nLet me know if you need anything else.",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "leading prose with fenced body",
			raw:  "Sure, here:\n```json\n{\"a\": 1}\n```\nDone.",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "leading prose without fences",
			raw:  "Here is the JSON you asked for: {\"a\": 1}",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "nested objects survive slicing",
			raw:  "Result:\n{\"iocs\": {\"ips\": [\"1.2.3.4\"]}, \"ok\": true}",
			want: map[string]any{
				"iocs": map[string]any{"ips": []any{"1.2.3.4"}},
				"ok":   true,
			},
		},
		{
			// Slicing runs from the first "{" to the LAST "}", so junk
			// between two objects is swept into the slice and the parse
			// fails. Documented limitation, not a bug fix target.
			name:    "trailing junk object defeats brace slicing",
			raw:     `noise {"x":1} trailing {not json}`,
			wantErr: true,
		},
		{
			name:    "no braces at all",
			raw:     "I could not find any indicators in this post.",
			wantErr: true,
		},
		{
			name:    "empty reply",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "unterminated object",
			raw:     `{"a": 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractObject(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractObject(%q) = %v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractObject(%q) error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractObject(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractObjectErrorCarriesRaw(t *testing.T) {
	raw := "definitely not json"
	_, err := ExtractObject(raw)
	if err == nil {
		t.Fatal("expected error")
	}

	var cerr *CoercionError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *CoercionError", err)
	}
	if cerr.Raw != raw {
		t.Errorf("CoercionError.Raw = %q, want %q", cerr.Raw, raw)
	}
	if cerr.Unwrap() == nil {
		t.Error("CoercionError.Unwrap() = nil, want parse error")
	}
}

func TestRecoverJSONIdempotentOnCleanInput(t *testing.T) {
	clean := `{"a": 1, "nested": {"b": [2, 3]}}`
	if got := recoverJSON(clean); got != clean {
		t.Errorf("recoverJSON(%q) = %q, want input unchanged", clean, got)
	}
}

func TestRecoverJSONUnclosedFence(t *testing.T) {
	// An opener with no closer keeps everything after the opener; brace
	// slicing still finds the object.
	got, err := ExtractObject("```json\n{\"a\": 1}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"a": float64(1)}) {
		t.Errorf("got %#v", got)
	}
}
