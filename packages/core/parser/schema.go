package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// suiteSchema mirrors the strict shape Parse enforces, as a JSON Schema
// document for editor tooling and the validate command.
const suiteSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "sheetspec suite",
  "type": "object",
  "additionalProperties": false,
  "required": ["tests"],
  "properties": {
    "module": {"type": "string"},
    "source": {"type": "string"},
    "vars": {
      "type": "object",
      "additionalProperties": {"type": ["string", "number", "boolean", "null"]}
    },
    "tests": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "tags": {"type": "array", "items": {"type": "string"}},
          "skip": {"type": ["boolean", "string"]},
          "when": {"type": "string"},
          "assertions": {
            "type": "array",
            "items": {
              "type": "object",
              "minProperties": 1,
              "maxProperties": 1,
              "additionalProperties": false,
              "properties": {
                "equal": {"$ref": "#/definitions/comparison"},
                "unequal": {"$ref": "#/definitions/comparison"},
                "is-truthy": {"$ref": "#/definitions/unary"},
                "is-falsy": {"$ref": "#/definitions/unary"},
                "output": {"$ref": "#/definitions/output"},
                "contains-string": {"$ref": "#/definitions/needle"}
              }
            }
          }
        }
      }
    }
  },
  "definitions": {
    "scalar": {"type": ["string", "number", "boolean", "null"]},
    "comparison": {
      "type": "object",
      "additionalProperties": false,
      "required": ["of", "to"],
      "properties": {
        "of": {"$ref": "#/definitions/scalar"},
        "to": {"$ref": "#/definitions/scalar"},
        "description": {"type": "string"},
        "inspect": {"type": "boolean"}
      }
    },
    "unary": {
      "anyOf": [
        {"$ref": "#/definitions/scalar"},
        {
          "type": "object",
          "additionalProperties": false,
          "required": ["of"],
          "properties": {
            "of": {"$ref": "#/definitions/scalar"},
            "description": {"type": "string"}
          }
        }
      ]
    },
    "output": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "given": {"type": "string"},
        "from": {"type": "string"},
        "expect": {"type": "string"},
        "contains": {"type": "string"},
        "needle": {"type": "string"},
        "snapshot": {"type": "boolean"},
        "selector": {"type": "boolean"},
        "description": {"type": "string"}
      }
    },
    "needle": {
      "anyOf": [
        {"type": "string"},
        {
          "type": "object",
          "additionalProperties": false,
          "required": ["needle"],
          "properties": {
            "needle": {"type": "string"},
            "description": {"type": "string"}
          }
        }
      ]
    }
  }
}`

// ValidateSchema checks suite data against the suite schema without
// building a model. It reports every violation at once, unlike Parse,
// which stops at the first.
func ValidateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting suite to json: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(suiteSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonDoc)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(violations, "; "))
}

// SuiteSchema returns the embedded JSON Schema document, for tooling
// that wants to serve or bundle it.
func SuiteSchema() string { return suiteSchema }
