package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	dserrors "github.com/systmms/secstream/internal/errors"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// validate checks a merged document against the embedded schema.
func validate(doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}

	first := result.Errors()[0]
	return dserrors.ConfigError{
		Field:      first.Field(),
		Value:      first.Value(),
		Message:    "schema validation failed: " + strings.Join(problems, "; "),
		Suggestion: "Each account takes default, url, secret, tls, fingerprint and timeout_ms",
	}
}
