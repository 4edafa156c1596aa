package definition

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

//go:embed survey.yaml
var defaultDefinition []byte

// Default returns the survey shipped with the binary.
func Default() (*entities.SurveyDefinition, error) {
	return Parse(defaultDefinition)
}

// Load reads a survey definition from path. An empty path selects the
// embedded default.
func Load(path string) (*entities.SurveyDefinition, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey definition %s: %w", path, err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("survey definition %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes and validates a YAML survey definition. Unknown keys are
// rejected so a typo in a field name does not silently drop a question.
func Parse(data []byte) (*entities.SurveyDefinition, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var def entities.SurveyDefinition
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse survey definition: %w", err)
	}

	if err := validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

func validate(def *entities.SurveyDefinition) error {
	if len(def.Items) == 0 {
		return fmt.Errorf("survey definition has no likert items")
	}
	for i, item := range def.Items {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("likert item %d is empty", i+1)
		}
	}

	if len(def.Scale) == 0 {
		return fmt.Errorf("survey definition has no scale options")
	}
	seen := make(map[string]struct{}, len(def.Scale))
	for _, option := range def.Scale {
		if option.Value == "" {
			return fmt.Errorf("scale option %q has no value", option.Label)
		}
		if _, dup := seen[option.Value]; dup {
			return fmt.Errorf("duplicate scale value %q", option.Value)
		}
		seen[option.Value] = struct{}{}
	}
	return nil
}
