package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// The events schema is deliberately lenient: it checks the wire format
// (array of objects, string timestamps and so on) but declares no required
// fields, because missing mandatory fields are a per-participant condition
// the normalizer must record as a data-quality issue rather than a reason
// to reject the whole export.
const eventsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Word game event export",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "participantId": { "type": "string" },
      "sessionPhase": { "type": "string" },
      "type": { "type": "string" },
      "timestamp": { "type": "string" },
      "payload": { "type": ["object", "null"] }
    }
  }
}`

const confessionsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Confession set export",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["participantId"],
    "properties": {
      "participantId": { "type": "string", "minLength": 1 },
      "confessedWords": { "type": "array", "items": { "type": "string" } },
      "usedExternalResources": { "type": "boolean" }
    }
  }
}`

// eventsSchema is the compiled JSON Schema for event export files.
var eventsSchema *jsonschema.Schema

// confessionsSchema is the compiled JSON Schema for confession set files.
var confessionsSchema *jsonschema.Schema

func init() {
	eventsSchema = mustCompileSchema(eventsSchemaJSON, "events.schema.json")
	confessionsSchema = mustCompileSchema(confessionsSchemaJSON, "confessions.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateEventsBytes validates a raw events export against the schema and
// returns human-readable findings, empty when the document conforms.
func ValidateEventsBytes(data []byte) []string {
	return validateJSONBytes(eventsSchema, data)
}

// ValidateConfessionsBytes validates a raw confession set export.
func ValidateConfessionsBytes(data []byte) []string {
	return validateJSONBytes(confessionsSchema, data)
}

func validateJSONBytes(schema *jsonschema.Schema, data []byte) []string {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	return validateAgainstSchema(schema, doc)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
