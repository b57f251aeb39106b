// internal/workers/decision/rank-sailings/schema.go
package ranksailings

import "cruise-decision-workers/internal/common/validation"

// Only structure is checked here. Date strings are not format-checked:
// unparseable dates make nothing eligible rather than failing the job.
const inputSchemaJSON = `{
	"type": "object",
	"required": ["decisionInput"],
	"properties": {
		"decisionInput": {
			"type": "object",
			"required": ["departurePort", "dateRange"],
			"properties": {
				"departurePort": {"type": "string"},
				"dateRange": {
					"type": "object",
					"required": ["start", "end"],
					"properties": {
						"start": {"type": "string"},
						"end": {"type": "string"}
					}
				},
				"passengers": {
					"type": "object",
					"properties": {
						"adults": {"type": "integer", "minimum": 0},
						"children": {"type": ["integer", "null"], "minimum": 0}
					}
				},
				"budget": {
					"type": ["object", "null"],
					"properties": {
						"maxPerPerson": {"type": ["number", "null"]},
						"flexible": {"type": "boolean"}
					}
				},
				"preferences": {
					"type": ["object", "null"],
					"properties": {
						"cruiseLines": {"$ref": "#/definitions/stringList"},
						"shipClasses": {"$ref": "#/definitions/stringList"},
						"itineraryTags": {"$ref": "#/definitions/stringList"},
						"cabinTypes": {"$ref": "#/definitions/stringList"}
					}
				},
				"constraints": {
					"type": ["object", "null"],
					"properties": {
						"mustSailWeekend": {"type": "boolean"},
						"eligibleOnly": {"type": "boolean"}
					}
				},
				"shipId": {"type": "string"}
			}
		},
		"weights": {"type": ["object", "null"]},
		"limit": {"type": "integer", "minimum": 0}
	},
	"definitions": {
		"stringList": {"type": ["array", "null"], "items": {"type": "string"}}
	}
}`

var inputSchema = validation.MustCompile(TaskType, inputSchemaJSON)
