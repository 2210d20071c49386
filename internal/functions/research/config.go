package research

// Config captures the per-function settings the handler needs at runtime.
// The API key comes from the application config, the output schema from the
// function registry entry.
type Config struct {
	// APIKey authenticates requests to the Gemini API. Presence is checked
	// per invocation rather than at startup so the server can still serve
	// health and metrics endpoints without a key.
	APIKey string

	// OutputSchema is the JSON Schema the structured model output must
	// satisfy before it is decoded. A nil schema skips validation.
	OutputSchema map[string]interface{}
}
