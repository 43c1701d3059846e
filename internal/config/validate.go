package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spiffe/go-spiffe/v2/spiffeid"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator, reporting fields by their
// yaml names and with the spiffeid tag registered.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("spiffeid", validateSPIFFEID)
	})
	return validate
}

// validateSPIFFEID accepts strings the go-spiffe SDK parses as SPIFFE IDs.
func validateSPIFFEID(fl validator.FieldLevel) bool {
	_, err := spiffeid.FromString(fl.Field().String())
	return err == nil
}

// Validate checks a loaded configuration.
//
// Ensures:
//   - vault.account, vault.owner_account and vault.owner_spiffe_id are set and distinct
//   - vault.owner_spiffe_id is a syntactically valid SPIFFE ID (using SDK validation)
//   - strategy accounts are set unless strategy.kind is none, and differ from the vault accounts
//   - strategy.initial_exchange_rate parses to a positive rate
//   - http timeouts are positive and log settings are known values
func Validate(cfg *FileConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldErrors(verrs)
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if cfg.Strategy.Kind != "none" {
		if cfg.Strategy.Account == cfg.Strategy.MarketAccount {
			return errors.New("strategy.market_account must differ from strategy.account")
		}
		reserved := map[string]string{
			cfg.Vault.Account:      "vault.account",
			cfg.Vault.OwnerAccount: "vault.owner_account",
		}
		for _, acct := range []struct{ field, value string }{
			{"strategy.account", cfg.Strategy.Account},
			{"strategy.market_account", cfg.Strategy.MarketAccount},
		} {
			if other, ok := reserved[acct.value]; ok {
				return fmt.Errorf("%s must differ from %s", acct.field, other)
			}
		}
	}
	if cfg.Strategy.Kind == "exchange_rate" {
		if _, err := parseExchangeRate(cfg.Strategy.InitialExchangeRate); err != nil {
			return fmt.Errorf("invalid strategy.initial_exchange_rate %q: %w", cfg.Strategy.InitialExchangeRate, err)
		}
	}
	return nil
}

// fieldErrors flattens validator errors into "section.field: rule" messages.
func fieldErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, rule))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
