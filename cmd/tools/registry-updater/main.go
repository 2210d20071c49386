// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"research-assistant/internal/common/validation"
	"research-assistant/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Function ID (e.g., research)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Research Assistant)")
	description := addCmd.String("description", "", "Description")
	httpMethod := addCmd.String("method", "POST", "HTTP method the function accepts")
	routePath := addCmd.String("route", "", "Route the function is mounted at (e.g., /api/research)")
	version := addCmd.String("version", "1.0.0", "Version")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Function ID to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, version, method, route)")
	value := updateCmd.String("value", "", "New value for the field")

	addCmd.StringVar(&registryPath, "path", "configs/function-registry.json", "Path to registry file")
	updateCmd.StringVar(&registryPath, "path", "configs/function-registry.json", "Path to registry file")
	validateCmd.StringVar(&registryPath, "path", "configs/function-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" || *routePath == "" {
			fmt.Println("Error: id, displayName, description, and route are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		fn := registry.Function{
			ID:           *idAdd,
			DisplayName:  *displayName,
			Description:  *description,
			Version:      *version,
			HTTPMethod:   *httpMethod,
			Path:         *routePath,
			OutputSchema: map[string]interface{}{},
			ErrorCodes:   []string{},
			Tags:         []string{},
		}
		if err := addFunction(&fn); err != nil {
			fmt.Printf("Error adding function: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added function: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateFunction(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating function: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated function %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func addFunction(fn *registry.Function) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.FunctionRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Functions:   []registry.Function{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if _, exists := reg.FindByID(fn.ID); exists {
		return fmt.Errorf("function with ID %s already exists", fn.ID)
	}

	reg.Functions = append(reg.Functions, *fn)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateFunction(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	fn, found := reg.FindByID(id)
	if !found {
		return fmt.Errorf("function with ID %s not found", id)
	}

	switch field {
	case "displayName":
		fn.DisplayName = value
	case "description":
		fn.Description = value
	case "version":
		fn.Version = value
	case "method":
		fn.HTTPMethod = value
	case "route":
		fn.Path = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Functions) == 0 {
		return fmt.Errorf("registry contains no functions")
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	for _, fn := range reg.Functions {
		if fn.DisplayName == "" {
			return fmt.Errorf("function %s missing required field: DisplayName", fn.ID)
		}
		if len(fn.OutputSchema) > 0 {
			if err := validation.CompileSchema(fn.OutputSchema); err != nil {
				return fmt.Errorf("function %s has an invalid outputSchema: %w", fn.ID, err)
			}
		}
	}

	fmt.Printf("Registry validation passed. Found %d functions.\n", len(reg.Functions))
	return nil
}

// saveRegistry ensures the target directory exists before writing.
func saveRegistry(reg *registry.FunctionRegistry, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := registry.SaveRegistry(path, reg); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new function to the registry
  update   Update an existing function's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -id research -displayName "Research Assistant" -description "Grounded research via Gemini" -route /api/research
  registry-updater update -id research -field version -value 1.1.0
  registry-updater validate -path configs/function-registry.json

Use 'registry-updater <command> -h' for more information about a command.

`)
}
