package config

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// boardConfigSchema constrains the shape of a board config file before it is
// decoded. Geometry rules that need arithmetic (snakes descend, routes stay
// on the board) are enforced afterwards by engine.ValidateBoardConfig.
const boardConfigSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "size", "iterations"],
  "additionalProperties": false,
  "properties": {
    "name": {
      "type": "string",
      "minLength": 1
    },
    "description": {
      "type": "string"
    },
    "size": {
      "type": "integer",
      "minimum": 1
    },
    "die_size": {
      "type": "integer",
      "minimum": 1
    },
    "iterations": {
      "type": "integer",
      "minimum": 1
    },
    "max_turns": {
      "type": "integer",
      "minimum": 0
    },
    "snakes": {
      "$ref": "#/$defs/routes"
    },
    "ladders": {
      "$ref": "#/$defs/routes"
    }
  },
  "$defs": {
    "routes": {
      "type": "array",
      "items": {
        "type": "array",
        "items": { "type": "integer", "minimum": 0 },
        "minItems": 2,
        "maxItems": 2
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("board_config.json", boardConfigSchema)
