package entities

// SurveyDefinition describes what the survey page renders.
type SurveyDefinition struct {
	Title         string        `yaml:"title"`
	Intro         string        `yaml:"intro"`
	Scale         []ScaleOption `yaml:"scale"`
	Items         []string      `yaml:"items"`
	OpenQuestions OpenQuestions `yaml:"open_questions"`
}

// ScaleOption is one selectable answer for every likert item.
type ScaleOption struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// OpenQuestions holds the prompts of the three fixed free-text questions.
type OpenQuestions struct {
	Problems   string `yaml:"problemas"`
	Advantages string `yaml:"ventajas"`
	OtherGames string `yaml:"otros_juegos"`
}

// ItemCount returns N, the number of likert items.
func (d *SurveyDefinition) ItemCount() int {
	return len(d.Items)
}
