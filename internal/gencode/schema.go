package gencode

import (
	"github.com/xeipuuv/gojsonschema"
)

const codonListSchema = `{
  "type": "array",
  "items": {"type": "string", "pattern": "^[ACGTUacgtu]{3}$"}
}`

// objectSchema describes {"<id>": {"<sym>": ["TTT", ...]}}.
const objectSchema = `{
  "type": "object",
  "minProperties": 1,
  "patternProperties": {
    "^\\S+$": {
      "type": "object",
      "patternProperties": {"^.$": ` + codonListSchema + `},
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// arraySchema describes [{"table_id": 1, "<sym>": ["TTT", ...]}, ...].
const arraySchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["table_id"],
    "properties": {
      "table_id": {"type": ["integer", "string"], "minLength": 1}
    },
    "patternProperties": {"^.$": ` + codonListSchema + `},
    "additionalProperties": false
  }
}`

var (
	objectSchemaLoader = gojsonschema.NewStringLoader(objectSchema)
	arraySchemaLoader  = gojsonschema.NewStringLoader(arraySchema)
)

// validateDocument checks data against the schema for its encoding and
// returns a *ConfigError listing every violation.
func validateDocument(source string, schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ConfigError{Source: source, Message: "invalid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	cfgErr := &ConfigError{
		Source:  source,
		Message: "schema validation failed",
		Fields:  make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		cfgErr.Fields = append(cfgErr.Fields, FieldError{Field: field, Message: desc.Description()})
	}
	return cfgErr
}
