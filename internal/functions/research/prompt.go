package research

import "research-assistant/internal/common/gemini"

// FunctionID is the registry identifier for this function.
const FunctionID = "research"

// defaultSourceTitle substitutes for grounding attributions that carry a URI
// but no title.
const defaultSourceTitle = "No Title Available"

const systemPrompt = `
You are a Senior UI/UX and AI Research Analyst focused on modern web application development. Your task is to perform web search using the provided tools and collect high-quality, up-to-date resources for building an AI-powered website builder with exceptional UI/UX, similar to lovable.dev.
Analyze the user's request and provide the most relevant and powerful technologies and concepts. Your output MUST strictly adhere to the provided JSON schema. Do not include any introductory or concluding text outside of the JSON block.
Ensure all entries are well-researched, current, and directly relate to building a modern, performant, and user-friendly web application.
`

// generationSchema constrains the model output to the three research
// categories. It is expressed in the Gemini schema dialect (upper-case type
// names) and is built once at init; nothing mutates it afterwards.
var generationSchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"designPrinciples": map[string]interface{}{
			"type":        "ARRAY",
			"description": "Key UI/UX design philosophies, methodologies, or libraries relevant to modern AI builders.",
			"items": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "STRING",
						"description": "The name of the principle or library (e.g., Atomic Design, Shadcn UI).",
					},
					"summary": map[string]interface{}{
						"type":        "STRING",
						"description": "A concise 1-2 sentence summary of why this resource is valuable for the project.",
					},
				},
				"required": []string{"name", "summary"},
			},
		},
		"uiFrameworks": map[string]interface{}{
			"type":        "ARRAY",
			"description": "Recommended modern component libraries, styling utilities, or frameworks for rapid UI development.",
			"items": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "STRING",
						"description": "The name of the framework or tool (e.g., React, Svelte, Tailwind CSS).",
					},
					"summary": map[string]interface{}{
						"type":        "STRING",
						"description": "A concise 1-2 sentence summary of why this resource is valuable for the project.",
					},
				},
				"required": []string{"name", "summary"},
			},
		},
		"aiApiConcepts": map[string]interface{}{
			"type":        "ARRAY",
			"description": "Concepts or specific API use cases for integrating the AI model (Gemini) into the builder workflow.",
			"items": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "STRING",
						"description": "The name of the concept or API (e.g., Function Calling, Latent Space Image Generation).",
					},
					"summary": map[string]interface{}{
						"type":        "STRING",
						"description": "A concise 1-2 sentence summary of how this concept can be applied to the website builder.",
					},
				},
			},
		},
	},
	"required": []string{"designPrinciples", "uiFrameworks", "aiApiConcepts"},
}

// buildGenerateRequest assembles the full generateContent payload for a user
// prompt: the prompt itself, the Google Search tool, the analyst system
// instruction, and the structured-output generation config.
func buildGenerateRequest(prompt string) *gemini.GenerateContentRequest {
	return &gemini.GenerateContentRequest{
		Contents: []gemini.Content{
			{Parts: []gemini.Part{{Text: prompt}}},
		},
		Tools: []gemini.Tool{
			{GoogleSearch: &gemini.GoogleSearchTool{}},
		},
		SystemInstruction: &gemini.Content{
			Parts: []gemini.Part{{Text: systemPrompt}},
		},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   generationSchema,
		},
	}
}
