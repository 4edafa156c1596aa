package services

import (
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/kinesiogame/encuesta/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseForm() url.Values {
	return url.Values{
		"nombre": {"Ana"},
		"correo": {"ana@x.com"},
		"edad":   {"34"},
	}
}

func fixedValidator(items int) *SubmissionValidator {
	v := NewSubmissionValidator(items)
	v.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 890000000, time.UTC) }
	return v
}

func TestSubmissionValidator_Validate_Accepts(t *testing.T) {
	form := baseForm()
	form.Set("nombre", "  Ana  ")
	form.Set("edad", " 34 ")
	form.Set("item_1", " 5 ")
	form.Set("item_3", "2")
	form.Set("item_9", "4") // beyond the item count, ignored
	form.Set("problemas", "  ninguno ")

	sub, err := fixedValidator(3).Validate(form)
	require.NoError(t, err)

	assert.Equal(t, entities.Respondent{Name: "Ana", Email: "ana@x.com", Age: 34}, sub.Respondent())
	assert.Equal(t, []entities.LikertAnswer{
		{Index: 1, Value: "5"},
		{Index: 2, Value: ""},
		{Index: 3, Value: "2"},
	}, sub.Likert())
	assert.Equal(t, entities.OpenAnswers{Problems: "ninguno"}, sub.Open())
	assert.Equal(t, "2025-03-04T05:06:07.890000Z", sub.FormattedTimestamp())
}

func TestSubmissionValidator_Validate_AgeBoundaries(t *testing.T) {
	tests := []struct {
		age  string
		want entities.RejectionKind
	}{
		{age: "10"},
		{age: "110"},
		{age: "+34"},
		{age: "9", want: entities.RejectionAgeOutOfRange},
		{age: "111", want: entities.RejectionAgeOutOfRange},
		{age: "-5", want: entities.RejectionAgeOutOfRange},
		{age: "99999999999999999999999", want: entities.RejectionAgeOutOfRange},
		{age: "abc", want: entities.RejectionInvalidAgeFormat},
		{age: "34.5", want: entities.RejectionInvalidAgeFormat},
		{age: "3 4", want: entities.RejectionInvalidAgeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			form := baseForm()
			form.Set("edad", tt.age)

			sub, err := fixedValidator(15).Validate(form)
			if tt.want == "" {
				require.NoError(t, err)
				assert.Equal(t, 15, sub.LikertCount())
				return
			}

			var rejection *entities.Rejection
			require.True(t, errors.As(err, &rejection), "expected rejection, got %v", err)
			assert.Equal(t, tt.want, rejection.Kind)
			assert.Equal(t, entities.FieldAge, rejection.Field)
		})
	}
}

func TestSubmissionValidator_Validate_MissingRequired(t *testing.T) {
	for _, key := range []string{"nombre", "correo", "edad"} {
		t.Run(key, func(t *testing.T) {
			for _, value := range []string{"", "   ", "\t\n"} {
				form := baseForm()
				form.Set(key, value)

				_, err := fixedValidator(15).Validate(form)

				var rejection *entities.Rejection
				require.True(t, errors.As(err, &rejection))
				assert.Equal(t, entities.RejectionMissingRequiredField, rejection.Kind)
				assert.Equal(t, key, rejection.Field)
			}
		})
	}
}

func TestSubmissionValidator_Validate_NilForm(t *testing.T) {
	_, err := fixedValidator(15).Validate(nil)

	var rejection *entities.Rejection
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, entities.FieldName, rejection.Field)
}

func TestSubmissionValidator_Validate_AlwaysCarriesEveryItem(t *testing.T) {
	sub, err := fixedValidator(15).Validate(baseForm())
	require.NoError(t, err)

	likert := sub.Likert()
	require.Len(t, likert, 15)
	for i, answer := range likert {
		assert.Equal(t, i+1, answer.Index)
		assert.Empty(t, answer.Value, "item_"+strconv.Itoa(i+1))
	}
}
