// Package grant provides the mint capability token.
package grant

import (
	"fmt"
	"time"

	"github.com/emberforge/armory/internal/platform/errors"
	"github.com/emberforge/armory/internal/platform/id"
)

// ErrEmptyRecipient indicates a grant issuance without a recipient.
var ErrEmptyRecipient = errors.New(errors.CodeGrantEmptyRecipient, "grant recipient is required")

// Grant is a mint capability. Possession of a valid grant id is what
// authorizes minting to arbitrary recipients; grants are only created at
// bootstrap and through publisher-gated issuance, and are never revoked.
type Grant struct {
	ID        string
	Recipient string
	IssuedBy  string
	CreatedAt time.Time
}

// Issue creates a new grant for recipient. The generated id doubles as the
// capability secret, so ids must come from a cryptographic source.
func Issue(recipient, issuedBy string, now func() time.Time, idGenerator func() (string, error)) (Grant, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if recipient == "" {
		return Grant{}, ErrEmptyRecipient
	}

	grantID, err := idGenerator()
	if err != nil {
		return Grant{}, fmt.Errorf("generate grant id: %w", err)
	}

	return Grant{
		ID:        grantID,
		Recipient: recipient,
		IssuedBy:  issuedBy,
		CreatedAt: now().UTC(),
	}, nil
}
