package generator

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"

	"github.com/julianstephens/genie/internal/models"
)

var (
	planFields       = []string{"refinedIdea", "targetUsers", "mvpFeatures", "monetization", "pitchSummary", "swot", "competitors", "founderNote"}
	competitorFields = []string{"name", "marketPosition", "keyDifferentiator", "strategicGap"}
	swotFields       = []string{"strengths", "weaknesses", "opportunities", "threats"}
)

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

// responseSchema constrains the model's JSON output.
func responseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	targetUser := object([]string{"userType", "painPoint"}, map[string]*genai.Schema{
		"userType":  str,
		"painPoint": str,
	})
	model := object([]string{"modelName", "description"}, map[string]*genai.Schema{
		"modelName":   str,
		"description": str,
	})
	competitor := object(competitorFields, map[string]*genai.Schema{
		"name":              str,
		"marketPosition":    str,
		"keyDifferentiator": str,
		"strategicGap":      str,
	})
	mvp := object([]string{"mustHave", "optional"}, map[string]*genai.Schema{
		"mustHave": stringList(),
		"optional": stringList(),
	})
	swot := object(swotFields, map[string]*genai.Schema{
		"strengths":     stringList(),
		"weaknesses":    stringList(),
		"opportunities": stringList(),
		"threats":       stringList(),
	})

	return object(planFields, map[string]*genai.Schema{
		"refinedIdea":  str,
		"targetUsers":  {Type: genai.TypeArray, Items: targetUser},
		"mvpFeatures":  mvp,
		"monetization": {Type: genai.TypeArray, Items: model},
		"pitchSummary": str,
		"swot":         swot,
		"competitors":  {Type: genai.TypeArray, Items: competitor},
		"founderNote":  str,
	})
}

// planJSONSchema mirrors responseSchema for validation at the boundary.
// Every field is required, including the nested mvpFeatures and swot keys.
const planJSONSchema = `{
  "type": "object",
  "required": ["refinedIdea", "targetUsers", "mvpFeatures", "monetization", "pitchSummary", "swot", "competitors"],
  "properties": {
    "refinedIdea": {"type": "string", "minLength": 1},
    "targetUsers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["userType", "painPoint"],
        "properties": {"userType": {"type": "string"}, "painPoint": {"type": "string"}}
      }
    },
    "mvpFeatures": {
      "type": "object",
      "required": ["mustHave", "optional"],
      "properties": {
        "mustHave": {"type": "array", "items": {"type": "string"}},
        "optional": {"type": "array", "items": {"type": "string"}}
      }
    },
    "monetization": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["modelName", "description"],
        "properties": {"modelName": {"type": "string"}, "description": {"type": "string"}}
      }
    },
    "pitchSummary": {"type": "string"},
    "swot": {
      "type": "object",
      "required": ["strengths", "weaknesses", "opportunities", "threats"],
      "properties": {
        "strengths": {"type": "array", "items": {"type": "string"}},
        "weaknesses": {"type": "array", "items": {"type": "string"}},
        "opportunities": {"type": "array", "items": {"type": "string"}},
        "threats": {"type": "array", "items": {"type": "string"}}
      }
    },
    "competitors": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "marketPosition", "keyDifferentiator", "strategicGap"],
        "properties": {
          "name": {"type": "string"},
          "marketPosition": {"type": "string"},
          "keyDifferentiator": {"type": "string"},
          "strategicGap": {"type": "string"}
        }
      }
    },
    "founderNote": {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	planSchema *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		planSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(planJSONSchema))
	})
	return planSchema, schemaErr
}

// DecodePlan validates body against the plan schema and decodes it.
// founderNote is optional; every other field must be present.
func DecodePlan(body []byte) (models.StartupPlan, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return models.StartupPlan{}, fail("empty response", nil)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return models.StartupPlan{}, fail("response is not JSON", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return models.StartupPlan{}, fail("invalid plan schema", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return models.StartupPlan{}, fail("schema validation error", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return models.StartupPlan{}, fail("response does not match the plan schema", fmt.Errorf("%s", strings.Join(msgs, "; ")))
	}

	var plan models.StartupPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return models.StartupPlan{}, fail("response is not a plan", err)
	}
	plan.Normalize()
	return plan, nil
}
