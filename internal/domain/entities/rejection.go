package entities

import "fmt"

// RejectionKind classifies why a submission was refused.
type RejectionKind string

const (
	RejectionMissingRequiredField RejectionKind = "missing_required_field"
	RejectionInvalidAgeFormat     RejectionKind = "invalid_age_format"
	RejectionAgeOutOfRange        RejectionKind = "age_out_of_range"
)

// Rejection is returned by validation. It is never shown to the respondent.
type Rejection struct {
	Kind  RejectionKind
	Field string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("submission rejected: %s (%s)", r.Kind, r.Field)
}
