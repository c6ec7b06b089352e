// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CoercionError reports a model reply that did not reduce to valid JSON
// after fence-stripping and brace-slicing. It carries the original reply so
// callers can log or surface it.
type CoercionError struct {
	// Raw is the unmodified model reply.
	Raw string

	// Err is the underlying JSON parse error.
	Err error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coercing model reply: %v", e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// ExtractObject recovers a JSON object from a raw model reply. The model
// was merely instructed to emit JSON; replies routinely arrive wrapped in
// code fences or padded with prose, so the text is reduced in layers before
// parsing:
//
//  1. trim surrounding whitespace;
//  2. if the text opens with a ```json fence, keep what precedes the
//     closing fence; same for a plain ``` fence;
//  3. slice from the first "{" to the last "}" when both exist in order;
//  4. parse the remaining slice.
//
// Nothing beyond brace-slicing is attempted: no bracket balancing, no
// trailing-comma removal, no quote repair. A reply with trailing junk after
// the real object's closing brace therefore still fails to parse; that is
// the documented limitation of this recovery strategy, kept for behavior
// compatibility with downstream consumers.
func ExtractObject(raw string) (map[string]any, error) {
	slice := recoverJSON(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(slice), &obj); err != nil {
		return nil, &CoercionError{Raw: raw, Err: err}
	}
	return obj, nil
}

// recoverJSON applies the fence-strip and brace-slice layers and returns
// the candidate JSON text. It never fails; an unhelpful slice simply fails
// to parse later.
func recoverJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		if body, _, found := strings.Cut(rest, "```"); found {
			s = body
		} else {
			s = rest
		}
	} else if rest, ok := strings.CutPrefix(s, "```"); ok {
		if body, _, found := strings.Cut(rest, "```"); found {
			s = body
		} else {
			s = rest
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}

	return s
}
