package debug

import (
	"fmt"
	"sync"
)

// FaultProfile holds faults injected into the simulated base asset and
// lending markets. All faults are one-shot: the first matching call consumes
// them, so a test or operator arms exactly one failure at a time.
type FaultProfile struct {
	mu sync.Mutex

	// FailNextSupplyCode makes the next market supply/mint return this
	// non-zero failure code.
	FailNextSupplyCode uint64

	// FailNextRedeemCode makes the next market withdraw/redeem return this
	// non-zero failure code.
	FailNextRedeemCode uint64

	// ShortNextWithdraw caps what the next market withdraw actually returns
	// while still reporting success. Zero disables the fault.
	ShortNextWithdraw uint64

	// FailNextBalanceRead makes the next market balance query fail.
	FailNextBalanceRead bool

	// FailNextTransfer makes the next base-asset transfer fail.
	FailNextTransfer bool
}

// Faults is the global fault profile served by the debug server.
var Faults = &FaultProfile{}

// SetFailNextSupply arms a supply failure with code. Code zero is rejected
// because zero is the market's success code.
func (f *FaultProfile) SetFailNextSupply(code uint64) error {
	if code == 0 {
		return fmt.Errorf("failure code must be non-zero")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailNextSupplyCode = code
	return nil
}

// TakeSupplyFailure returns and clears the armed supply failure code.
func (f *FaultProfile) TakeSupplyFailure() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := f.FailNextSupplyCode
	f.FailNextSupplyCode = 0
	return code
}

// SetFailNextRedeem arms a withdraw/redeem failure with code.
func (f *FaultProfile) SetFailNextRedeem(code uint64) error {
	if code == 0 {
		return fmt.Errorf("failure code must be non-zero")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailNextRedeemCode = code
	return nil
}

// TakeRedeemFailure returns and clears the armed redeem failure code.
func (f *FaultProfile) TakeRedeemFailure() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := f.FailNextRedeemCode
	f.FailNextRedeemCode = 0
	return code
}

// SetShortNextWithdraw caps the next withdraw at limit units.
func (f *FaultProfile) SetShortNextWithdraw(limit uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ShortNextWithdraw = limit
}

// TakeWithdrawCap returns and clears the armed withdraw cap.
// ok is false when no cap is armed.
func (f *FaultProfile) TakeWithdrawCap() (limit uint64, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	limit = f.ShortNextWithdraw
	f.ShortNextWithdraw = 0
	return limit, limit > 0
}

// SetFailNextBalanceRead enables/disables balance read failure
func (f *FaultProfile) SetFailNextBalanceRead(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailNextBalanceRead = enabled
}

// ShouldFailBalanceRead checks and consumes the balance read flag
func (f *FaultProfile) ShouldFailBalanceRead() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNextBalanceRead {
		f.FailNextBalanceRead = false
		return true
	}
	return false
}

// SetFailNextTransfer enables/disables transfer failure
func (f *FaultProfile) SetFailNextTransfer(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailNextTransfer = enabled
}

// ShouldFailTransfer checks and consumes the transfer flag
func (f *FaultProfile) ShouldFailTransfer() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNextTransfer {
		f.FailNextTransfer = false
		return true
	}
	return false
}

// Reset clears all fault flags
func (f *FaultProfile) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailNextSupplyCode = 0
	f.FailNextRedeemCode = 0
	f.ShortNextWithdraw = 0
	f.FailNextBalanceRead = false
	f.FailNextTransfer = false
}

// Snapshot returns the armed faults as a map, for logging and the debug server.
func (f *FaultProfile) Snapshot() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return map[string]any{
		"fail_next_supply_code":  f.FailNextSupplyCode,
		"fail_next_redeem_code":  f.FailNextRedeemCode,
		"short_next_withdraw":    f.ShortNextWithdraw,
		"fail_next_balance_read": f.FailNextBalanceRead,
		"fail_next_transfer":     f.FailNextTransfer,
	}
}
