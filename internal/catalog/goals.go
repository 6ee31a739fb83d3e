package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"narrative-server/internal/domain"
	"narrative-server/pkg/logger"
)

//go:embed defaults/goals.json
var defaultGoalsJSON []byte

const goalSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "candidateActions"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"label": {"type": "string"},
			"scope": {"enum": ["unit", "squad"]},
			"completion": {
				"type": "object",
				"properties": {
					"kind": {"enum": ["stat-at-least", "condition-met", "none"]},
					"stat": {"type": "string"},
					"threshold": {"type": "number"},
					"condition": {"type": "string"}
				}
			},
			"candidateActions": {
				"type": "array",
				"items": {"type": "string", "minLength": 1},
				"minItems": 1
			}
		}
	}
}`

var goalSchema = jsonschema.MustCompileString("goals.schema.json", goalSchemaJSON)

// LoadGoalCatalog reads and validates a goal file from disk. Catalog order
// is preserved: it is the selector's tie-break.
func LoadGoalCatalog(path string) ([]domain.GoalDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read goal catalog: %w", err)
	}
	goals, err := parseGoalCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("goal catalog %s: %w", path, err)
	}
	logger.Log.WithField("path", path).Info("Goal catalog loaded")
	return goals, nil
}

// DefaultGoalCatalog returns the built-in goals.
func DefaultGoalCatalog() []domain.GoalDef {
	goals, err := parseGoalCatalog(defaultGoalsJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded goal defaults are invalid: %v", err))
	}
	return goals
}

func parseGoalCatalog(raw []byte) ([]domain.GoalDef, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := goalSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var goals []domain.GoalDef
	if err := json.Unmarshal(raw, &goals); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return goals, nil
}
