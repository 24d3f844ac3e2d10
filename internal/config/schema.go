package config

import (
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
)

// Schema returns the JSON schema of Config.
func Schema() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(&Config{})
	schema.Title = "qbot-config"
	schema.Description = "Configuration schema for the qbot client"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config schema", err)
	}

	return string(data), nil
}
