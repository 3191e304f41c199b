// file: internal/registry/execution.go
package registry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// newExecutionID builds an execution identifier in the form "{kind}-{name}-{epochMs}-{rand}".
func newExecutionID(kind, name string) string {
	epochMs := time.Now().UnixMilli()
	rand := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s-%d-%s", kind, name, epochMs, rand)
}

// validateArguments runs the declarative required/type/enum checks described by args
// against the supplied values, used by prompts and tools alike when no custom Validator
// or compiled schema is configured for the definition.
func validateArguments(args []Argument, values map[string]interface{}, kind string) ValidationResult {
	var errs []string
	for _, arg := range args {
		value, present := values[arg.Name]
		if !present {
			if arg.Required {
				errs = append(errs, fmt.Sprintf("Missing required %s '%s'", kind, arg.Name))
			}
			continue
		}
		if arg.Type != "" && !typeMatches(arg.Type, value) {
			errs = append(errs, fmt.Sprintf("Invalid value for %s '%s': expected %s", kind, arg.Name, arg.Type))
			continue
		}
		if len(arg.Enum) > 0 && !inEnum(arg.Enum, value) {
			errs = append(errs, fmt.Sprintf("Invalid value for %s '%s': not in allowed set", kind, arg.Name))
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func typeMatches(want string, value interface{}) bool {
	switch want {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	default:
		return true
	}
}

func inEnum(enum []interface{}, value interface{}) bool {
	for _, v := range enum {
		if v == value {
			return true
		}
	}
	return false
}
