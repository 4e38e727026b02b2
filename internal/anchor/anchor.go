// Package anchor defines the blockchain anchoring port and its HTTP client.
//
// Anchoring timestamps a JSON payload on chain so reputation events,
// credential transitions, and attestations become tamper-evident. Anchoring is
// a precondition for persistence everywhere in the engine: callers submit
// first and only commit state once a transaction ID comes back.
package anchor

import (
	"context"

	dErrors "lexara/pkg/domain-errors"
)

// Submission is the payload handed to the anchoring endpoint.
type Submission struct {
	// PayloadJSON is the canonical JSON document being fingerprinted.
	PayloadJSON []byte
	// Algorithm names the hash algorithm applied server-side, e.g. "sha256".
	Algorithm string
	// Label tags the submission kind: reputation_event, credential, attestation.
	Label string
	// Size is the payload size in bytes.
	Size int
	// Metadata carries free-form key/value pairs recorded alongside the anchor.
	Metadata map[string]string
}

// Client is the anchoring port. Implementations must return ErrUnavailable
// (possibly wrapped) on timeout or rejection so callers can abort the commit.
type Client interface {
	Submit(ctx context.Context, sub Submission) (txID string, err error)
}

// ErrUnavailable is returned when the anchoring endpoint times out or rejects
// the submission. Matched via errors.Is.
var ErrUnavailable = dErrors.New(dErrors.CodeAnchorUnavailable, "anchor endpoint unavailable")
