// pkg/registry/schema.go
package registry

// FunctionRegistry is the catalogue of HTTP functions this service mounts.
type FunctionRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Functions   []Function `json:"functions"`
}

// Function describes one mounted function: its route, the JSON schema its
// structured output must satisfy, and the error codes it may produce.
type Function struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Version      string                 `json:"version"`
	HTTPMethod   string                 `json:"httpMethod"`
	Path         string                 `json:"path"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Tags         []string               `json:"tags"`
}
