package domain

import "strings"

// Account identifies a holder of base asset or shares: a depositor, the vault's
// own custody account, a strategy, or an external market.
type Account string

// NewAccount validates and returns an account identity.
// Surrounding whitespace is trimmed; an empty result is ErrInvalidAccount.
func NewAccount(s string) (Account, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidAccount
	}
	return Account(s), nil
}

// IsZero reports whether the account is unset.
func (a Account) IsZero() bool {
	return a == ""
}

func (a Account) String() string {
	return string(a)
}
