package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Domain-specific hash types
type (
	CohortHash Hash
	ConfigHash Hash
)

func (h CohortHash) String() string { return Hash(h).String() }
func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeCohortHash fingerprints a label map independent of map iteration order
func ComputeCohortHash(labels map[SubjectID]string) CohortHash {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, labels[SubjectID(k)])
	}
	return CohortHash(NewHash([]byte(b.String())))
}

// ComputeConfigHash fingerprints an ordered list of key/value settings
func ComputeConfigHash(settings map[string]string) ConfigHash {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + settings[k]
	}
	return ConfigHash(NewHash([]byte(strings.Join(parts, ";"))))
}
