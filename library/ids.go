package library

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// newID creates a prefixed NanoID, e.g. "txn-V1StGXR8_Z5jdHi6B-myT".
// The prefix makes ids self-describing in logs and CLI output.
func newID(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

const (
	idPrefixBook        = "book"
	idPrefixMember      = "mbr"
	idPrefixTransaction = "txn"
	idPrefixHold        = "hold"
	idPrefixFeedback    = "fb"
)
