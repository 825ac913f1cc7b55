package ast

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is the JSON Schema of the JSON wire format.
const Schema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"$ref": "#/$defs/node",
	"$defs": {
		"node": {
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"type": "string", "minLength": 1},
				"text": {"type": ["string", "null"]},
				"offset": {"type": "integer", "minimum": 0},
				"name": {"type": ["string", "null"]},
				"operator": {"type": ["string", "null"]},
				"label": {"type": ["string", "null"]},
				"kind": {"type": ["string", "null"]},
				"typeName": {"type": ["string", "null"]},
				"member": {"type": ["string", "null"]},
				"invocation": {"enum": ["", "&", ".", null]},
				"static": {"type": "boolean"},
				"postfix": {"type": "boolean"},
				"bareword": {"type": "boolean"},
				"splatted": {"type": "boolean"},
				"hasElse": {"type": "boolean"},
				"hasFinally": {"type": "boolean"},
				"left": {"$ref": "#/$defs/optNode"},
				"right": {"$ref": "#/$defs/optNode"},
				"child": {"$ref": "#/$defs/optNode"},
				"expression": {"$ref": "#/$defs/optNode"},
				"index": {"$ref": "#/$defs/optNode"},
				"variable": {"$ref": "#/$defs/optNode"},
				"condition": {"$ref": "#/$defs/optNode"},
				"initializer": {"$ref": "#/$defs/optNode"},
				"iterator": {"$ref": "#/$defs/optNode"},
				"pipeline": {"$ref": "#/$defs/optNode"},
				"argument": {"$ref": "#/$defs/optNode"},
				"default": {"$ref": "#/$defs/optNode"},
				"body": {"$ref": "#/$defs/optNode"},
				"paramBlock": {"$ref": "#/$defs/optNode"},
				"statements": {"$ref": "#/$defs/nodes"},
				"elements": {"$ref": "#/$defs/nodes"},
				"arguments": {"$ref": "#/$defs/nodes"},
				"nested": {"$ref": "#/$defs/nodes"},
				"parameters": {"$ref": "#/$defs/nodes"},
				"else": {"$ref": "#/$defs/nodes"},
				"finally": {"$ref": "#/$defs/nodes"},
				"dynamicParam": {"$ref": "#/$defs/nodes"},
				"begin": {"$ref": "#/$defs/nodes"},
				"process": {"$ref": "#/$defs/nodes"},
				"end": {"$ref": "#/$defs/nodes"},
				"redirections": {"$ref": "#/$defs/strings"},
				"attributes": {"$ref": "#/$defs/strings"},
				"using": {"$ref": "#/$defs/strings"},
				"requires": {"$ref": "#/$defs/strings"},
				"clauses": {
					"type": ["array", "null"],
					"items": {
						"type": "object",
						"required": ["condition"],
						"properties": {
							"condition": {"$ref": "#/$defs/node"},
							"statements": {"$ref": "#/$defs/nodes"}
						}
					}
				},
				"catches": {
					"type": ["array", "null"],
					"items": {
						"type": "object",
						"properties": {
							"types": {"$ref": "#/$defs/strings"},
							"statements": {"$ref": "#/$defs/nodes"}
						}
					}
				},
				"pairs": {
					"type": ["array", "null"],
					"items": {
						"type": "object",
						"required": ["key", "value"],
						"properties": {
							"key": {"$ref": "#/$defs/node"},
							"value": {"$ref": "#/$defs/node"}
						}
					}
				}
			}
		},
		"optNode": {
			"anyOf": [{"type": "null"}, {"$ref": "#/$defs/node"}]
		},
		"nodes": {
			"type": ["array", "null"],
			"items": {"$ref": "#/$defs/node"}
		},
		"strings": {
			"type": ["array", "null"],
			"items": {"type": "string"}
		}
	}
}`

var schema = jsonschema.MustCompileString("tree.schema.json", Schema)

// Validate checks a JSON encoded tree against Schema.
func Validate(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("decode json tree: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid syntax tree: %w", err)
	}
	return nil
}
