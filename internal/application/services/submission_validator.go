package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
)

// FormValues is the read side of a posted form. url.Values satisfies it;
// absent keys yield "".
type FormValues interface {
	Get(key string) string
}

// SubmissionValidator turns raw form input into a Submission or a Rejection.
type SubmissionValidator struct {
	itemCount int
	now       func() time.Time
}

// NewSubmissionValidator creates a validator for a survey with itemCount likert items.
func NewSubmissionValidator(itemCount int) *SubmissionValidator {
	return &SubmissionValidator{
		itemCount: itemCount,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ItemCount returns the number of likert items every submission carries.
func (v *SubmissionValidator) ItemCount() int {
	return v.itemCount
}

// Validate checks the required fields and the age range. On failure the
// returned error is an *entities.Rejection.
func (v *SubmissionValidator) Validate(form FormValues) (*entities.Submission, error) {
	name := field(form, entities.FieldName)
	email := field(form, entities.FieldEmail)
	ageRaw := field(form, entities.FieldAge)

	for _, required := range []struct{ key, value string }{
		{entities.FieldName, name},
		{entities.FieldEmail, email},
		{entities.FieldAge, ageRaw},
	} {
		if required.value == "" {
			return nil, &entities.Rejection{Kind: entities.RejectionMissingRequiredField, Field: required.key}
		}
	}

	age, err := strconv.Atoi(ageRaw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, &entities.Rejection{Kind: entities.RejectionAgeOutOfRange, Field: entities.FieldAge}
		}
		return nil, &entities.Rejection{Kind: entities.RejectionInvalidAgeFormat, Field: entities.FieldAge}
	}
	if age < entities.MinAge || age > entities.MaxAge {
		return nil, &entities.Rejection{Kind: entities.RejectionAgeOutOfRange, Field: entities.FieldAge}
	}

	likert := make([]entities.LikertAnswer, 0, v.itemCount)
	for idx := 1; idx <= v.itemCount; idx++ {
		likert = append(likert, entities.LikertAnswer{
			Index: idx,
			Value: field(form, entities.LikertFieldName(idx)),
		})
	}

	return entities.NewSubmission(
		v.now(),
		entities.Respondent{Name: name, Email: email, Age: age},
		likert,
		entities.OpenAnswers{
			Problems:   field(form, entities.FieldProblems),
			Advantages: field(form, entities.FieldAdvantages),
			OtherGames: field(form, entities.FieldOtherGames),
		},
	), nil
}

func field(form FormValues, key string) string {
	if form == nil {
		return ""
	}
	return strings.TrimSpace(form.Get(key))
}
