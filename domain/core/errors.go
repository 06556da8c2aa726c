package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Subject-level errors: the subject is skipped, the batch continues
	ErrShape        = errors.New("connectivity matrix is not square")
	ErrMissingLabel = errors.New("subject has no cohort label")
	ErrExtraction   = errors.New("feature extraction failed")

	// Batch-level errors: the run aborts
	ErrSchemaMismatch = errors.New("matrix dimension disagrees with batch schema")
	ErrNoSubjects     = errors.New("no subjects processed")
)

// Error constructors with context
func NewShapeError(rows, cols int) error {
	return fmt.Errorf("%w: shape=(%d, %d)", ErrShape, rows, cols)
}

func NewMissingLabelError(subject SubjectID) error {
	return fmt.Errorf("%w: id=%s", ErrMissingLabel, subject)
}

func NewExtractionError(subject SubjectID, cause any) error {
	return fmt.Errorf("%w for subject %s: %v", ErrExtraction, subject, cause)
}

func NewSchemaMismatchError(subject SubjectID, got, want int) error {
	return fmt.Errorf("%w: subject %s has N=%d, batch schema has N=%d", ErrSchemaMismatch, subject, got, want)
}

// Error checking helpers
func IsSubjectError(err error) bool {
	return errors.Is(err, ErrShape) ||
		errors.Is(err, ErrMissingLabel) ||
		errors.Is(err, ErrExtraction)
}

func IsBatchFatal(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrNoSubjects)
}

// ErrValidation marks an incomplete or inconsistent domain object
var ErrValidation = errors.New("validation failed")

func NewValidationError(entity, msg string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, entity, msg)
}
