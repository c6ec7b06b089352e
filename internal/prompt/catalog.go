// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt is the catalog of model instructions used by the analysis
// pipeline. It maps each content type to a fixed extraction instruction that
// embeds the expected JSON schema, and holds the separately maintained
// classification instruction. The catalog is static text with no behavior:
// it cannot fail, and it never truncates content. Budgets belong to the
// pipeline.
package prompt

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// The schema skeletons below are a stable contract: report rendering keys
// into the extracted records by these exact field names. Renaming a field
// is a breaking change.

const iocInstruction = `Extract technical threat intelligence. You're analyzing for a security analyst - skip basics, give actionable details.

Return ONLY valid JSON (no markdown, no extra text):
{
  "threat_name": "name",
  "iocs": {
    "ips": [],
    "domains": [],
    "urls": [],
    "hashes": {"sha256": [], "md5": [], "sha1": []},
    "file_names": [],
    "registry_keys": [],
    "mutex": [],
    "user_agents": [],
    "email_subjects": []
  },
  "infrastructure": {
    "hosting_provider": "",
    "asn": "",
    "registrar": "",
    "ssl_certs": []
  },
  "technical_details": {
    "execution_flow": "actual command line / process tree",
    "obfuscation": "how it's packed/obfuscated",
    "persistence_mechanism": "exact registry key or scheduled task",
    "c2_protocol": "HTTP/HTTPS/DNS/custom",
    "encryption": "what encryption used",
    "sandbox_evasion": "anti-analysis tricks"
  },
  "detection_queries": [
    "KQL queries for MDO/Defender/Sentinel",
    "specific EDR detection logic"
  ],
  "sample_info": {
    "sample_links": ["any.run/virustotal/hybrid-analysis links"],
    "yara_rules": "YARA rule if provided"
  },
  "key_findings": "the actual sauce - what's new/interesting about this threat"
}`

const techniqueInstruction = `Extract details about this attack technique or research. Focus on what matters for detection.

Return ONLY valid JSON (no markdown, no extra text):
{
  "technique_name": "",
  "attack_vector": "how it works technically",
  "prerequisites": "what attacker needs",
  "detection_gap": "why current tools miss it",
  "detection_ideas": [
    "specific ways to detect this",
    "telemetry sources to monitor",
    "behavioral indicators"
  ],
  "affected_products": ["EDR/product names that are blind to this"],
  "mitigation": "how to prevent or reduce risk",
  "poc_available": true,
  "key_takeaway": "why this matters for your environment - what to do about it"
}`

const toolInstruction = `Analyze this security tool from a detection perspective.

Return ONLY valid JSON (no markdown, no extra text):
{
  "tool_name": "",
  "tool_purpose": "what it does",
  "capabilities": ["list of key features"],
  "detection_methods": [
    "how to detect usage in your environment",
    "specific IOCs or behaviors"
  ],
  "legitimate_use_cases": ["when it's benign"],
  "malicious_use_cases": ["how attackers use it"],
  "telemetry_sources": ["where to look for it - EDR/network/email"],
  "key_takeaway": "should you monitor for this? how?"
}`

const actorInstruction = `Extract threat actor intelligence.

Return ONLY valid JSON (no markdown, no extra text):
{
  "actor_name": "",
  "aliases": [],
  "targeting": {
    "industries": [],
    "geos": [],
    "motivation": "financial/espionage/destructive"
  },
  "ttp_changes": "what's new in their playbook",
  "infrastructure_patterns": "their infrastructure style/preferences",
  "recent_activity": "latest campaigns or changes",
  "watch_for": "specific things to monitor in your environment if you match their targeting"
}`

const vulnInstruction = `Extract vulnerability details.

Return ONLY valid JSON (no markdown, no extra text):
{
  "cve_id": "",
  "affected_products": [],
  "severity": "critical/high/medium/low",
  "exploit_available": true,
  "exploit_complexity": "easy/medium/hard",
  "attack_vector": "how it's exploited",
  "detection_methods": ["how to detect exploitation attempts"],
  "mitigation": "patching info or workarounds",
  "observed_in_wild": true,
  "key_takeaway": "do you need to act on this immediately?"
}`

const detectionInstruction = `Extract detection engineering intelligence.

Return ONLY valid JSON (no markdown, no extra text):
{
  "detection_name": "",
  "what_it_detects": "specific threat or behavior",
  "data_sources": ["telemetry needed"],
  "detection_logic": "the actual query or rule",
  "false_positive_potential": "low/medium/high",
  "tuning_recommendations": "how to reduce FPs",
  "coverage": "what this does and doesn't catch",
  "key_takeaway": "should you implement this?"
}`

const genericInstruction = `Summarize this security content from an analyst perspective.

Return ONLY valid JSON (no markdown, no extra text):
{
  "summary": "what this is about",
  "actionable_items": ["things you should do based on this"],
  "relevance": "why this matters or doesn't matter"
}`

// ForType returns the extraction instruction for a content type. Unmapped
// types, including general_news and anything the classifier invents, fall
// back to the generic instruction; the function is total.
func ForType(t types.ContentType) string {
	switch t {
	case types.TypeIOCBased:
		return iocInstruction
	case types.TypeTechnique:
		return techniqueInstruction
	case types.TypeTool:
		return toolInstruction
	case types.TypeThreatActor:
		return actorInstruction
	case types.TypeVulnerability:
		return vulnInstruction
	case types.TypeDetection:
		return detectionInstruction
	default:
		return genericInstruction
	}
}

// classificationTmpl is the first-stage instruction. Its schema matches
// types.Classification.
var classificationTmpl = template.Must(template.New("classification").Parse(`Analyze this security content and determine what type of intelligence it contains.

Return ONLY valid JSON with this exact structure (no markdown, no extra text):

{
  "content_type": "ioc_based" | "technique_research" | "tool_analysis" | "threat_actor_profile" | "vulnerability_analysis" | "detection_engineering" | "general_news",
  "has_actionable_intel": true | false,
  "summary": "one line summary of what this is about"
}

Content:
{{.Content}}

JSON Response:`))

// extractionTmpl wraps a type instruction with the item's source and
// content and the trailing JSON cue.
var extractionTmpl = template.Must(template.New("extraction").Parse(`{{.Instruction}}

Source: {{.Source}}

Content:
{{.Content}}

JSON Response:`))

// Classification renders the classification prompt for the given content.
// The caller is responsible for truncating content to its budget first.
func Classification(content string) string {
	var buf bytes.Buffer
	// Template execution over a static template and string data cannot fail.
	_ = classificationTmpl.Execute(&buf, struct{ Content string }{Content: content})
	return buf.String()
}

// Extraction renders the extraction prompt for the given content type,
// source label, and (pre-truncated) content.
func Extraction(t types.ContentType, source, content string) string {
	var buf bytes.Buffer
	_ = extractionTmpl.Execute(&buf, struct {
		Instruction string
		Source      string
		Content     string
	}{
		Instruction: ForType(t),
		Source:      source,
		Content:     content,
	})
	return buf.String()
}
