// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*FunctionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg FunctionRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

func SaveRegistry(path string, reg *FunctionRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// FindByID returns the function with the given ID.
func (r *FunctionRegistry) FindByID(id string) (*Function, bool) {
	for i := range r.Functions {
		if r.Functions[i].ID == id {
			return &r.Functions[i], true
		}
	}
	return nil, false
}

// Validate checks structural requirements every entry must meet.
func (r *FunctionRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Functions))
	for _, fn := range r.Functions {
		if fn.ID == "" {
			return fmt.Errorf("registry entry with empty id")
		}
		if seen[fn.ID] {
			return fmt.Errorf("duplicate registry id %q", fn.ID)
		}
		seen[fn.ID] = true
		if fn.Path == "" {
			return fmt.Errorf("function %q has no path", fn.ID)
		}
		if fn.HTTPMethod == "" {
			return fmt.Errorf("function %q has no httpMethod", fn.ID)
		}
	}
	return nil
}
