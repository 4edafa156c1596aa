package entities

import (
	"strconv"
	"time"
)

// Form field names posted by the survey page.
const (
	FieldName       = "nombre"
	FieldEmail      = "correo"
	FieldAge        = "edad"
	FieldProblems   = "problemas"
	FieldAdvantages = "ventajas"
	FieldOtherGames = "otros_juegos"

	likertFieldPrefix = "item_"
)

// Age bounds accepted for a respondent, inclusive.
const (
	MinAge = 10
	MaxAge = 110
)

// TimestampLayout renders acceptance instants as ISO-8601 UTC with a trailing Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// LikertFieldName returns the form field (and record key) for a 1-based item index.
func LikertFieldName(index int) string {
	return likertFieldPrefix + strconv.Itoa(index)
}

// Respondent holds the required general data of a submission.
type Respondent struct {
	Name  string
	Email string
	Age   int
}

// LikertAnswer is the raw value given for one item.
type LikertAnswer struct {
	Index int
	Value string
}

// OpenAnswers holds the three free-text questions.
type OpenAnswers struct {
	Problems   string
	Advantages string
	OtherGames string
}

// Submission is one accepted survey. It is built by the validator and must
// not be modified afterwards.
type Submission struct {
	timestamp  time.Time
	respondent Respondent
	likert     []LikertAnswer
	open       OpenAnswers
}

// NewSubmission assembles a submission. likert is copied and must hold one
// answer per configured item, ordered by index.
func NewSubmission(timestamp time.Time, respondent Respondent, likert []LikertAnswer, open OpenAnswers) *Submission {
	return &Submission{
		timestamp:  timestamp.UTC(),
		respondent: respondent,
		likert:     append([]LikertAnswer(nil), likert...),
		open:       open,
	}
}

// Timestamp returns the acceptance instant in UTC.
func (s *Submission) Timestamp() time.Time { return s.timestamp }

// FormattedTimestamp returns the acceptance instant using TimestampLayout.
func (s *Submission) FormattedTimestamp() string { return s.timestamp.Format(TimestampLayout) }

// Respondent returns the general data.
func (s *Submission) Respondent() Respondent { return s.respondent }

// Likert returns a copy of the ordered likert answers.
func (s *Submission) Likert() []LikertAnswer {
	return append([]LikertAnswer(nil), s.likert...)
}

// LikertCount returns the number of likert answers.
func (s *Submission) LikertCount() int { return len(s.likert) }

// Open returns the free-text answers.
func (s *Submission) Open() OpenAnswers { return s.open }
