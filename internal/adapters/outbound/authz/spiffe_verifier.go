// Package authz verifies the vault owner's identity with SPIFFE IDs.
package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/spiffe/go-spiffe/v2/spiffeid"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// SPIFFEVerifier accepts exactly one SPIFFE ID as the vault owner.
type SPIFFEVerifier struct {
	owner spiffeid.ID
	match spiffeid.Matcher
}

// NewSPIFFEVerifier parses ownerID with the go-spiffe SDK, which enforces the
// SPIFFE ID format (scheme, DNS trust domain, path normalization).
func NewSPIFFEVerifier(ownerID string) (*SPIFFEVerifier, error) {
	id, err := spiffeid.FromString(strings.TrimSpace(ownerID))
	if err != nil {
		return nil, fmt.Errorf("invalid owner SPIFFE ID %q: %w", ownerID, err)
	}
	return &SPIFFEVerifier{owner: id, match: spiffeid.MatchID(id)}, nil
}

// Owner returns the accepted SPIFFE ID.
func (v *SPIFFEVerifier) Owner() spiffeid.ID {
	return v.owner
}

// TrustDomain returns the owner's trust domain.
func (v *SPIFFEVerifier) TrustDomain() spiffeid.TrustDomain {
	return v.owner.TrustDomain()
}

// VerifyOwner implements ports.OwnerVerifier.
func (v *SPIFFEVerifier) VerifyOwner(_ context.Context, presented string) error {
	id, err := spiffeid.FromString(strings.TrimSpace(presented))
	if err != nil {
		return fmt.Errorf("%w: parse SPIFFE ID: %w", domain.ErrUnauthorized, err)
	}
	if err := v.match(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return nil
}

var _ ports.OwnerVerifier = (*SPIFFEVerifier)(nil)
