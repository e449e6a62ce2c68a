package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema returns the JSON schema of the configuration, for editors and validators
func GenerateJSONSchema() ([]byte, error) {
	// field names match the TOML keys, viper reads them case insensitively
	r := &jsonschema.Reflector{ExpandedStruct: true}
	schema := r.Reflect(&Config{})
	schema.Title = "forcebridge relayer config file"
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling config schema: %w", err)
	}
	return out, nil
}
