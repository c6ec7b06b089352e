// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders an analysis run as a human-readable HTML digest
// grouped by content type. Degraded records (not actionable, failed) are
// flagged in place rather than omitted, so the digest always accounts for
// every fetched item.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// Meta describes the run being rendered.
type Meta struct {
	GeneratedAt   time.Time
	Model         string
	Actionable    int
	Informational int
	Failed        int
}

// sectionOrder fixes the digest layout: substantive intelligence first,
// then the degraded buckets.
var sectionOrder = []types.ContentType{
	types.TypeIOCBased,
	types.TypeVulnerability,
	types.TypeTechnique,
	types.TypeDetection,
	types.TypeThreatActor,
	types.TypeTool,
	types.TypeGeneralNews,
	types.TypeNotActionable,
	types.TypeError,
}

var sectionTitles = map[types.ContentType]string{
	types.TypeIOCBased:      "IOC-Based Threat Intelligence",
	types.TypeVulnerability: "Vulnerabilities",
	types.TypeTechnique:     "Techniques & Research",
	types.TypeDetection:     "Detection Engineering",
	types.TypeThreatActor:   "Threat Actor Profiles",
	types.TypeTool:          "Tool Analysis",
	types.TypeGeneralNews:   "General News",
	types.TypeNotActionable: "Not Actionable",
	types.TypeError:         "Errors",
}

type section struct {
	Title   string
	Type    types.ContentType
	Records []types.AnalysisRecord
}

type reportData struct {
	Meta     Meta
	Sections []section
}

// Generate renders the records as an HTML digest to w.
func Generate(records []types.AnalysisRecord, meta Meta, w io.Writer) error {
	grouped := make(map[types.ContentType][]types.AnalysisRecord)
	var extraTypes []types.ContentType
	known := make(map[types.ContentType]bool)
	for _, ct := range sectionOrder {
		known[ct] = true
	}
	for _, rec := range records {
		if !known[rec.ContentType] && grouped[rec.ContentType] == nil {
			// Types the classifier invented still get a section.
			extraTypes = append(extraTypes, rec.ContentType)
		}
		grouped[rec.ContentType] = append(grouped[rec.ContentType], rec)
	}

	data := reportData{Meta: meta}
	for _, ct := range append(append([]types.ContentType{}, sectionOrder...), extraTypes...) {
		recs := grouped[ct]
		if len(recs) == 0 {
			continue
		}
		title := sectionTitles[ct]
		if title == "" {
			title = string(ct)
		}
		data.Sections = append(data.Sections, section{Title: title, Type: ct, Records: recs})
	}

	return reportTmpl.Execute(w, data)
}

// WriteFiles renders the digest and a raw JSON dump of the records into
// outputDir, returning both paths.
func WriteFiles(outputDir string, records []types.AnalysisRecord, meta Meta) (htmlPath, jsonPath string, err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output directory: %w", err)
	}

	stamp := meta.GeneratedAt.Format("20060102_150405")

	jsonPath = filepath.Join(outputDir, "ttp_data_"+stamp+".json")
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshaling records: %w", err)
	}
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return "", "", fmt.Errorf("writing raw data: %w", err)
	}

	htmlPath = filepath.Join(outputDir, "ttp_report_"+stamp+".html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return "", "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := Generate(records, meta, f); err != nil {
		return "", "", fmt.Errorf("rendering report: %w", err)
	}
	return htmlPath, jsonPath, nil
}

// Template helpers for walking the heterogeneous extracted data.

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// sortedKeys gives deterministic field order; Go map iteration is random.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func failed(rec types.AnalysisRecord) bool {
	if rec.ContentType == types.TypeError {
		return true
	}
	if rec.Data == nil {
		return false
	}
	_, ok := rec.Data["error"]
	return ok
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"isMap":      isMap,
	"isList":     isList,
	"asMap":      asMap,
	"asList":     asList,
	"sortedKeys": sortedKeys,
	"failed":     failed,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>TTP Monitoring Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2em auto; max-width: 60em; color: #1d2530; }
  h1 { border-bottom: 3px solid #2c5f8a; padding-bottom: .3em; }
  h2 { color: #2c5f8a; margin-top: 2em; }
  .meta { color: #667; font-size: .9em; }
  .record { border: 1px solid #d5dbe3; border-radius: 6px; padding: 1em; margin: 1em 0; }
  .record.failed { border-color: #c0392b; background: #fdf3f2; }
  .record.informational { color: #556; background: #f6f8fa; }
  .source { font-size: .85em; color: #667; word-break: break-all; }
  .badge { display: inline-block; font-size: .75em; padding: .1em .5em; border-radius: 3px; background: #2c5f8a; color: #fff; }
  .badge.failed { background: #c0392b; }
  dl { margin: .5em 0; }
  dt { font-weight: 600; margin-top: .5em; }
  dd { margin-left: 1.5em; }
  ul { margin: .2em 0; }
</style>
</head>
<body>
<h1>TTP Monitoring Report</h1>
<p class="meta">Generated {{.Meta.GeneratedAt.Format "2006-01-02 15:04 MST"}} &middot; model {{.Meta.Model}} &middot;
{{.Meta.Actionable}} actionable / {{.Meta.Informational}} informational / {{.Meta.Failed}} failed</p>

{{range .Sections}}
<h2>{{.Title}} ({{len .Records}})</h2>
{{range .Records}}
<div class="record{{if failed .}} failed{{else if not .Data}} informational{{end}}">
  <span class="badge{{if failed .}} failed{{end}}">{{.ContentType}}</span>
  <div class="source"><a href="{{.SourceURL}}">{{.SourceURL}}</a></div>
  {{if .Summary}}<p>{{.Summary}}</p>{{end}}
  {{if .Error}}<p>{{.Error}}</p>{{end}}
  {{if .Data}}{{template "fields" .Data}}{{end}}
</div>
{{end}}
{{end}}
</body>
</html>

{{define "fields"}}
<dl>
{{$m := .}}
{{range sortedKeys $m}}
  <dt>{{.}}</dt>
  <dd>{{template "value" index $m .}}</dd>
{{end}}
</dl>
{{end}}

{{define "value"}}
{{- if isMap . -}}
{{template "fields" asMap .}}
{{- else if isList . -}}
<ul>{{range asList .}}<li>{{template "value" .}}</li>{{end}}</ul>
{{- else -}}
{{.}}
{{- end -}}
{{end}}`))
