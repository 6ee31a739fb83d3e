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

// Band names. Selection is by health: below lowHealthRatio of maximum the
// unit draws from BandLowHealth, otherwise BandHealthy. An empty band falls
// back to BandDefault, and BandSpecial is always appended.
const (
	BandLowHealth = "low_health"
	BandHealthy   = "healthy"
	BandDefault   = "default"
	BandSpecial   = "special"
)

const lowHealthRatio = 0.35

//go:embed defaults/actions.json
var defaultActionsJSON []byte

const actionSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"type": "string", "minLength": 1},
				"description": {"type": "string"},
				"payload": {"type": "object"},
				"effects": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["property", "operation", "value"],
						"properties": {
							"target": {"enum": ["self", "target", "all", "ally", "enemy"]},
							"property": {"type": "string", "minLength": 1},
							"operation": {"enum": ["add", "subtract", "multiply", "divide", "set"]},
							"permanent": {"type": "boolean"},
							"value": {
								"type": "object",
								"required": ["kind"],
								"properties": {
									"kind": {"enum": ["static", "calculation", "variable", "random"]},
									"value": {"type": "number"},
									"variable": {"type": "string"},
									"min": {"type": "integer"},
									"max": {"type": "integer"}
								}
							}
						}
					}
				}
			}
		}
	}
}`

var actionSchema = jsonschema.MustCompileString("actions.schema.json", actionSchemaJSON)

// ActionCatalog holds the action repertoire grouped into health bands.
type ActionCatalog struct {
	bands map[string][]*domain.Action
}

// NewActionCatalog builds a catalog from already-constructed bands.
// Scenario code and tests use this; files go through LoadActionCatalog.
func NewActionCatalog(bands map[string][]*domain.Action) *ActionCatalog {
	if bands == nil {
		bands = map[string][]*domain.Action{}
	}
	return &ActionCatalog{bands: bands}
}

// LoadActionCatalog reads and validates a band file from disk.
func LoadActionCatalog(path string) (*ActionCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read action catalog: %w", err)
	}
	c, err := parseActionCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("action catalog %s: %w", path, err)
	}
	logger.Log.WithField("path", path).Info("Action catalog loaded")
	return c, nil
}

// DefaultActionCatalog returns the built-in repertoire. The embedded data is
// validated by the same schema as user files; a failure here is a packaging
// bug and panics.
func DefaultActionCatalog() *ActionCatalog {
	c, err := parseActionCatalog(defaultActionsJSON)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded action defaults are invalid: %v", err))
	}
	return c
}

func parseActionCatalog(raw []byte) (*ActionCatalog, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := actionSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var bands map[string][]*domain.Action
	if err := json.Unmarshal(raw, &bands); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &ActionCatalog{bands: bands}, nil
}

// ActionsFor returns the unit's available actions for this turn, chosen by
// its current health band.
func (c *ActionCatalog) ActionsFor(u *domain.Unit) []*domain.Action {
	band := BandHealthy
	max := u.NumberOr(domain.PropMaxHealth, 0)
	if max > 0 && u.NumberOr(domain.PropHealth, max)/max < lowHealthRatio {
		band = BandLowHealth
	}

	list := c.bands[band]
	if len(list) == 0 {
		list = c.bands[BandDefault]
	}

	out := make([]*domain.Action, 0, len(list)+len(c.bands[BandSpecial]))
	out = append(out, list...)
	out = append(out, c.bands[BandSpecial]...)
	return out
}

// Band returns one band's actions verbatim.
func (c *ActionCatalog) Band(name string) []*domain.Action {
	return c.bands[name]
}
