package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sufield/yieldvault/internal/domain"
)

// OwnerCredential is the verified capability required by RebindStrategy.
//
// Credentials are only issued by Vault.AuthorizeOwner and are bound to the
// issuing vault; the zero value and credentials from another vault are rejected.
type OwnerCredential struct {
	vault    *Vault
	subject  string
	issuedAt time.Time
}

// Subject is the identity the credential was issued to.
func (c *OwnerCredential) Subject() string {
	if c == nil {
		return ""
	}
	return c.subject
}

// IssuedAt is when the credential was issued.
func (c *OwnerCredential) IssuedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.issuedAt
}

// AuthorizeOwner verifies the presented identity against the owner verifier
// and issues a credential for this vault.
//
// Error Contract:
//   - domain.ErrUnauthorized if no verifier is configured or verification fails
func (v *Vault) AuthorizeOwner(ctx context.Context, presented string) (*OwnerCredential, error) {
	if v.verifier == nil {
		return nil, fmt.Errorf("authorize owner: no owner verifier configured: %w", domain.ErrUnauthorized)
	}
	if err := v.verifier.VerifyOwner(ctx, presented); err != nil {
		v.logger.Warn("owner authorization denied", "presented", presented, "error", err)
		return nil, fmt.Errorf("authorize owner: %w", err)
	}
	return &OwnerCredential{vault: v, subject: presented, issuedAt: v.now()}, nil
}

func (v *Vault) checkCredential(cred *OwnerCredential) error {
	if cred == nil || cred.vault != v {
		return domain.ErrUnauthorized
	}
	return nil
}
