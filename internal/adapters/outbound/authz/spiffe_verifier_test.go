package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/adapters/outbound/authz"
	"github.com/sufield/yieldvault/internal/domain"
)

func TestNewSPIFFEVerifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ownerID string
		wantErr bool
	}{
		{"valid", "spiffe://example.org/vault-owner", false},
		{"surrounding whitespace", "  spiffe://example.org/vault-owner ", false},
		{"wrong scheme", "https://example.org/vault-owner", true},
		{"empty", "", true},
		{"uppercase trust domain", "spiffe://Example.org/owner", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := authz.NewSPIFFEVerifier(tt.ownerID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "example.org", v.TrustDomain().Name())
		})
	}
}

func TestSPIFFEVerifier_VerifyOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, err := authz.NewSPIFFEVerifier("spiffe://example.org/vault-owner")
	require.NoError(t, err)

	tests := []struct {
		name      string
		presented string
		wantErr   bool
	}{
		{"owner", "spiffe://example.org/vault-owner", false},
		{"other workload", "spiffe://example.org/depositor", true},
		{"other trust domain", "spiffe://evil.org/vault-owner", true},
		{"not a SPIFFE ID", "vault-owner", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.VerifyOwner(ctx, tt.presented)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			assert.NoError(t, err)
		})
	}
}
