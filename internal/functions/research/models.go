package research

import "research-assistant/internal/models"

// Request is the inbound payload for the research function.
type Request struct {
	Prompt string `json:"prompt"`
}

// Response is the success payload: the structured research data plus the
// grounding sources the model consulted. Sources is always present, empty
// when the model reports no usable attributions.
type Response struct {
	Research models.ResearchData `json:"research"`
	Sources  []models.Source     `json:"sources"`
}
