package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID     ID
	SubjectID ID
)

// String conversions for domain IDs
func (id RunID) String() string     { return ID(id).String() }
func (id SubjectID) String() string { return ID(id).String() }

// NewRunID creates a time-ordered run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

var (
	digitRuns     = regexp.MustCompile(`\d+`)
	idSeparators  = regexp.MustCompile(`[\s\-_]+`)
	subjectPrefix = []string{"sub", "subject", "pt", "pte", "id", "patient", "paziente"}
)

// CanonicalSubjectID reduces a label-sheet identifier or a matrix file name to the
// key used to match the two. Digits win: "sub-0012_conn.csv" and "PTE-12" both map
// to "12". Names without digits are lowercased, separators dropped and the known
// prefixes stripped in order.
func CanonicalSubjectID(s string) SubjectID {
	base := filepath.Base(strings.TrimSpace(s))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if digits := digitRuns.FindAllString(base, -1); len(digits) > 0 {
		return trimLeadingZeros(strings.Join(digits, ""))
	}

	b := idSeparators.ReplaceAllString(strings.ToLower(base), "")
	for _, pref := range subjectPrefix {
		b = strings.TrimPrefix(b, pref)
	}
	return trimLeadingZeros(b)
}

func trimLeadingZeros(s string) SubjectID {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return SubjectID(s)
}
