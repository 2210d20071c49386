// internal/common/gemini/types.go
package gemini

// GenerateContentRequest is the generateContent request envelope.
type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	Tools             []Tool            `json:"tools,omitempty"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text,omitempty"`
}

type Tool struct {
	GoogleSearch *GoogleSearchTool `json:"google_search,omitempty"`
}

// GoogleSearchTool enables provider-side web search grounding. The wire
// representation is an empty object.
type GoogleSearchTool struct{}

type GenerationConfig struct {
	ResponseMIMEType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
}

// GenerateContentResponse is the decoded upstream envelope.
type GenerateContentResponse struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GroundingMetadata struct {
	GroundingAttributions []GroundingAttribution `json:"groundingAttributions,omitempty"`
}

type GroundingAttribution struct {
	Web *WebSource `json:"web,omitempty"`
}

type WebSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
}

// Text returns the first part's text of the candidate content, reporting
// absence explicitly instead of defaulting.
func (c *Candidate) Text() (string, bool) {
	if len(c.Content.Parts) == 0 {
		return "", false
	}
	text := c.Content.Parts[0].Text
	if text == "" {
		return "", false
	}
	return text, true
}

// IsEmpty reports a candidate carrying no content at all. Upstream sometimes
// emits a bare object in the candidate slot; that counts as no candidate.
func (c *Candidate) IsEmpty() bool {
	return len(c.Content.Parts) == 0 &&
		c.Content.Role == "" &&
		c.FinishReason == "" &&
		c.GroundingMetadata == nil
}

// Attributions returns the grounding attributions, an empty slice when the
// metadata block is absent (absence is not an error).
func (c *Candidate) Attributions() []GroundingAttribution {
	if c.GroundingMetadata == nil {
		return nil
	}
	return c.GroundingMetadata.GroundingAttributions
}
