// Package url provides parsing and validation helpers for the scheme://path resource URIs
// used by internal/registry's ResourceRegistry and ResourceDefinition.ValidateURI.
package url

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var resourceURIRegex = regexp.MustCompile(`^[a-z]+://[a-zA-Z0-9\-_\./]+(?:/\{[a-zA-Z0-9\-_]+\})?$`)

// ParseResourceURI splits a resource URI into its scheme and path, e.g.
// "tasks://all" returns "tasks", "all".
func ParseResourceURI(uri string) (scheme, path string, err error) {
	parts := strings.SplitN(uri, "://", 2)
	if len(parts) != 2 {
		return "", "", errors.Newf("invalid resource URI format: %s", uri)
	}
	return parts[0], parts[1], nil
}

// ValidateResourceURI reports whether uri has the form scheme://path or
// scheme://path/{param}.
func ValidateResourceURI(uri string) bool {
	return resourceURIRegex.MatchString(uri)
}

// ExtractPathParam extracts the value bound to a single {param} placeholder in
// templatePath from actualPath. For templatePath "list/{list_id}" and actualPath
// "list/123", it returns "123".
func ExtractPathParam(templatePath, actualPath string) (string, error) {
	startIndex := strings.Index(templatePath, "{")
	endIndex := strings.Index(templatePath, "}")
	if startIndex == -1 || endIndex == -1 || startIndex >= endIndex {
		return "", errors.Newf("template path does not contain a valid parameter: %s", templatePath)
	}

	prefix := templatePath[:startIndex]
	if !strings.HasPrefix(actualPath, prefix) {
		return "", errors.Newf("actual path %s does not match template %s", actualPath, templatePath)
	}
	paramValue := actualPath[len(prefix):]

	if endIndex+1 < len(templatePath) {
		suffix := templatePath[endIndex+1:]
		if !strings.HasSuffix(paramValue, suffix) {
			return "", errors.Newf("actual path %s does not match template %s", actualPath, templatePath)
		}
		paramValue = paramValue[:len(paramValue)-len(suffix)]
	}

	return paramValue, nil
}
