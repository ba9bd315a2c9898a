package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/banshee-data/gmti.report/internal/gmti"
)

// configSchemaJSON is the wire contract for POST /ingest-config. It rejects
// unknown keys and wrong-typed values before the profile ever reaches the
// decoder; semantic bounds live in generator.Config.Validate.
const configSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"taps":                  {"type": "integer", "minimum": 1},
		"range_bins":            {"type": "integer", "minimum": 1},
		"doppler_bins":          {"type": "integer", "minimum": 1},
		"frequency_ghz":         {"type": "number", "exclusiveMinimum": 0},
		"noise_level":           {"type": "number", "minimum": 0},
		"seed":                  {"type": "integer", "minimum": 0},
		"mode":                  {"type": "string", "enum": ["standby", "adv-gmti-scan", "adv-gmti-stare", "adv-dmti-stare", "adv-dmti-scan"]},
		"scenario_name":         {"type": "string"},
		"platform_type":         {"type": "string"},
		"platform_velocity_kmh": {"type": "number", "minimum": 0},
		"altitude_m":            {"type": "number"},
		"area_width_km":         {"type": "number", "minimum": 0},
		"area_height_km":        {"type": "number", "minimum": 0},
		"clutter_level":         {"type": "number", "minimum": 0, "maximum": 1},
		"snr_target_db":         {"type": "number"},
		"interference_db":       {"type": "number"},
		"target_motion":         {"type": "string"},
		"description":           {"type": "string"},
		"timestamp_start":       {"type": "number"}
	}
}`

var configSchema = mustCompileConfigSchema()

func mustCompileConfigSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", strings.NewReader(configSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add config schema resource: %v", err))
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile config schema: %v", err))
	}
	return schema
}

// ValidateConfigJSON checks a raw ingest-config body against the schema.
// Violations come back as ErrInvalidInput so the handler maps them to 422.
func ValidateConfigJSON(data []byte) error {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return gmti.Errorf(gmti.ErrInvalidInput, "config is not valid JSON: %v", err)
	}
	if err := configSchema.Validate(payload); err != nil {
		return gmti.Errorf(gmti.ErrInvalidInput, "config rejected by schema: %v", err)
	}
	return nil
}
