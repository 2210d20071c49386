// internal/models/research.go
package models

// ResearchData is the structured payload the upstream model is constrained
// to produce: three ordered categories of name/summary entries.
type ResearchData struct {
	DesignPrinciples []ResearchEntry `json:"designPrinciples"`
	UIFrameworks     []ResearchEntry `json:"uiFrameworks"`
	AIAPIConcepts    []ResearchEntry `json:"aiApiConcepts"`
}

type ResearchEntry struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Source is one citation extracted from the upstream grounding metadata.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
