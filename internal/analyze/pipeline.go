// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze runs the two-stage classify-then-extract pipeline over
// fetched security content. Stage one asks the model what kind of
// intelligence an item contains; stage two extracts a typed record using
// the instruction matching that classification. Every failure mode reduces
// to a well-formed AnalysisRecord: callers always get exactly one record
// per item and never see an error escape Analyze.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/ttp-monitor/internal/backend"
	"github.com/pdiddy/ttp-monitor/internal/prompt"
	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// Default budgets. Classification sees a short prefix because categorizing
// rarely needs the full text; extraction gets more because the indicators
// are often deep in the body.
const (
	defaultClassifyBudget    = 3000
	defaultExtractBudget     = 8000
	defaultClassifyMaxTokens = 500
	defaultExtractMaxTokens  = 3000
)

// Pipeline analyzes content items one at a time. The classification call
// must complete before the extraction call begins, since the extraction
// instruction depends on the classification result; across items the
// pipeline holds no mutable state.
type Pipeline struct {
	gen backend.Generator
	cfg types.AnalyzeConfig
	log io.Writer
}

// New returns a Pipeline using gen for both stages. Diagnostic lines for
// degraded classifications go to log. Zero budgets in cfg take the
// defaults.
func New(gen backend.Generator, cfg types.AnalyzeConfig, log io.Writer) *Pipeline {
	if cfg.ClassifyBudget <= 0 {
		cfg.ClassifyBudget = defaultClassifyBudget
	}
	if cfg.ExtractBudget <= 0 {
		cfg.ExtractBudget = defaultExtractBudget
	}
	if cfg.ClassifyMaxTokens <= 0 {
		cfg.ClassifyMaxTokens = defaultClassifyMaxTokens
	}
	if cfg.ExtractMaxTokens <= 0 {
		cfg.ExtractMaxTokens = defaultExtractMaxTokens
	}
	if log == nil {
		log = io.Discard
	}
	return &Pipeline{gen: gen, cfg: cfg, log: log}
}

// Analyze classifies one content item and, when it carries actionable
// intelligence, extracts a typed record. It always returns a complete
// record. Classification failures silently downgrade the item to
// not_actionable; extraction failures produce a record whose Data is
// {"error": message} so report rendering never has to special-case
// pipeline exceptions.
func (p *Pipeline) Analyze(ctx context.Context, item types.ContentItem) types.AnalysisRecord {
	cls := p.classify(ctx, item.Content)

	if !cls.HasActionableIntel {
		return types.AnalysisRecord{
			SourceURL:   item.URL,
			ContentType: types.TypeNotActionable,
			Summary:     cls.Summary,
			Data:        nil,
		}
	}

	content := truncate(item.Content, p.cfg.ExtractBudget)
	extractPrompt := prompt.Extraction(cls.ContentType, item.URL, content)

	raw, err := p.gen.Generate(ctx, extractPrompt, p.cfg.ExtractMaxTokens)
	if err != nil {
		fmt.Fprintf(p.log, "extraction failed (%s, %s): %v\n", cls.ContentType, item.URL, err)
		return types.AnalysisRecord{
			SourceURL:   item.URL,
			ContentType: cls.ContentType,
			Data:        map[string]any{"error": err.Error()},
		}
	}

	data, err := ExtractObject(raw)
	if err != nil {
		fmt.Fprintf(p.log, "extraction reply unparsable (%s, %s): %v\n", cls.ContentType, item.URL, err)
		return types.AnalysisRecord{
			SourceURL:   item.URL,
			ContentType: cls.ContentType,
			Data:        map[string]any{"error": err.Error()},
		}
	}

	return types.AnalysisRecord{
		SourceURL:   item.URL,
		ContentType: cls.ContentType,
		Data:        data,
	}
}

// classifyFailed is the substitute verdict when classification errors out.
// Failing this stage is common (model output format drift), so it degrades
// to "nothing actionable here" instead of erroring the whole item.
var classifyFailed = types.Classification{
	ContentType:        types.TypeGeneralNews,
	HasActionableIntel: false,
	Summary:            "Classification failed",
}

// classify runs stage one against a truncated prefix of the content. Any
// failure, whether the call or the parse, yields classifyFailed.
func (p *Pipeline) classify(ctx context.Context, content string) types.Classification {
	classifyPrompt := prompt.Classification(truncate(content, p.cfg.ClassifyBudget))

	raw, err := p.gen.Generate(ctx, classifyPrompt, p.cfg.ClassifyMaxTokens)
	if err != nil {
		fmt.Fprintf(p.log, "classification failed: %v\n", err)
		return classifyFailed
	}

	var cls types.Classification
	if err := json.Unmarshal([]byte(recoverJSON(raw)), &cls); err != nil {
		fmt.Fprintf(p.log, "classification reply unparsable: %v\n", err)
		return classifyFailed
	}
	return cls
}

// BatchSummary holds counts from a batch analysis run.
type BatchSummary struct {
	Actionable    int
	Informational int
	Failed        int
}

// Total returns the number of items processed.
func (s BatchSummary) Total() int {
	return s.Actionable + s.Informational + s.Failed
}

// HasFailures reports whether any items failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// AnalyzeBatch analyzes items in order, printing per-item status to w, and
// returns one record per item plus a summary. Failures are strictly
// item-local. When ctx is cancelled mid-run the remaining items still get
// records, marked with the error content type, so the output count always
// matches the input count.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, items []types.ContentItem, w io.Writer) ([]types.AnalysisRecord, BatchSummary) {
	records := make([]types.AnalysisRecord, 0, len(items))
	var summary BatchSummary

	for i, item := range items {
		select {
		case <-ctx.Done():
			fmt.Fprintf(w, "aborted: %v (%d items unprocessed)\n", ctx.Err(), len(items)-i)
			for _, rest := range items[i:] {
				records = append(records, types.AnalysisRecord{
					SourceURL:   rest.URL,
					ContentType: types.TypeError,
					Error:       ctx.Err().Error(),
				})
				summary.Failed++
			}
			return records, summary
		default:
		}

		fmt.Fprintf(w, "[%d/%d] analyzing %s...\n", i+1, len(items), item.Source)

		rec := p.Analyze(ctx, item)
		records = append(records, rec)

		switch {
		case rec.Actionable():
			fmt.Fprintf(w, "  -> %s (actionable)\n", rec.ContentType)
			summary.Actionable++
		case rec.ContentType == types.TypeNotActionable:
			fmt.Fprintf(w, "  -> not actionable: %s\n", rec.Summary)
			summary.Informational++
		default:
			fmt.Fprintf(w, "  -> %s (failed)\n", rec.ContentType)
			summary.Failed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d actionable, %d informational, %d failed (total: %d)\n",
		summary.Actionable, summary.Informational, summary.Failed, summary.Total())
	return records, summary
}

// truncate caps s at n characters. Model budgets are counted in characters,
// not bytes, so multi-byte text is cut on rune boundaries.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
