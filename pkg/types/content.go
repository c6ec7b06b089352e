// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records and configuration shared across the
// ttp-monitor pipeline stages.
package types

// ContentKind identifies the medium a content item came from. It is carried
// for report presentation only; the analysis pipeline does not branch on it.
type ContentKind string

const (
	KindReddit  ContentKind = "reddit"
	KindSocial  ContentKind = "social"
	KindArticle ContentKind = "article"
)

// ContentItem is one piece of fetched security content, ready for analysis.
// Items are created by the fetch stage, are immutable, and are consumed
// exactly once by the analysis pipeline.
type ContentItem struct {
	// Source is a short human-readable origin label (e.g. "r/netsec",
	// "@vxunderground", or the article URL).
	Source string `json:"source" yaml:"source"`

	// URL is the canonical locator for the item. May be empty.
	URL string `json:"url" yaml:"url"`

	// Content is the raw text body to analyze. Arbitrary length; the
	// pipeline truncates it to the configured budgets before submission.
	Content string `json:"content" yaml:"content"`

	// Kind is the origin medium: reddit, social, or article.
	Kind ContentKind `json:"kind" yaml:"kind"`
}

// ContentType classifies what kind of security intelligence a content item
// contains. Every non-terminal value maps to an extraction instruction in
// the prompt catalog; general_news and unrecognized values fall back to the
// generic instruction.
type ContentType string

const (
	TypeIOCBased      ContentType = "ioc_based"
	TypeTechnique     ContentType = "technique_research"
	TypeTool          ContentType = "tool_analysis"
	TypeThreatActor   ContentType = "threat_actor_profile"
	TypeVulnerability ContentType = "vulnerability_analysis"
	TypeDetection     ContentType = "detection_engineering"
	TypeGeneralNews   ContentType = "general_news"

	// Terminal types produced by the pipeline itself; they never select an
	// extraction instruction.
	TypeNotActionable ContentType = "not_actionable"
	TypeError         ContentType = "error"
)

// ExtractionTypes lists the content types the classifier may assign.
var ExtractionTypes = []ContentType{
	TypeIOCBased,
	TypeTechnique,
	TypeTool,
	TypeThreatActor,
	TypeVulnerability,
	TypeDetection,
	TypeGeneralNews,
}

// Classification is the first-stage verdict for one content item.
type Classification struct {
	// ContentType is the classifier's guess at the intelligence type.
	ContentType ContentType `json:"content_type" yaml:"content_type"`

	// HasActionableIntel reports whether the item warrants extraction.
	// When false the pipeline skips extraction regardless of ContentType.
	HasActionableIntel bool `json:"has_actionable_intel" yaml:"has_actionable_intel"`

	// Summary is a one-line description of the item.
	Summary string `json:"summary" yaml:"summary"`
}

// AnalysisRecord is the final output for one content item. The pipeline
// produces exactly one record per item; degraded outcomes are encoded in
// ContentType (not_actionable, error) or in Data["error"], never dropped.
type AnalysisRecord struct {
	// SourceURL locates the analyzed item.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// ContentType is the resolved type, or a terminal marker.
	ContentType ContentType `json:"content_type" yaml:"content_type"`

	// Summary carries the classification summary for items that did not
	// reach extraction.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Data holds the extracted record keyed by the type's schema field
	// names. Nil for not_actionable items; {"error": msg} when extraction
	// failed.
	Data map[string]any `json:"data" yaml:"data"`

	// Error describes a whole-item failure, for records with ContentType
	// "error".
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Actionable reports whether the record carries usable extracted data.
func (r AnalysisRecord) Actionable() bool {
	if r.Data == nil {
		return false
	}
	_, failed := r.Data["error"]
	return !failed
}
