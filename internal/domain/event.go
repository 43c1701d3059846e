package domain

import "time"

// EventKind names an externally observable vault transition.
type EventKind string

const (
	EventDeposited       EventKind = "deposited"
	EventWithdrawn       EventKind = "withdrawn"
	EventHarvested       EventKind = "harvested"
	EventStrategyUpdated EventKind = "strategy_updated"
)

// Event is one entry of the vault's audit trail. Exactly one event is produced
// per successful operation, after the operation has committed.
//
// Field use by kind:
//   - Deposited: Account, Assets (in), Shares (minted)
//   - Withdrawn: Account, Assets (out), Shares (burned)
//   - Harvested: Profit, Fee (paid)
//   - StrategyUpdated: Strategy (empty when the vault was unbound)
type Event struct {
	ID   string    `json:"id"`
	Seq  uint64    `json:"seq"`
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`

	Account Account `json:"account,omitempty"`
	Assets  Amount  `json:"assets,omitempty"`
	Shares  Amount  `json:"shares,omitempty"`

	Profit Amount `json:"profit,omitempty"`
	Fee    Amount `json:"fee,omitempty"`

	Strategy Account `json:"strategy,omitempty"`
}
