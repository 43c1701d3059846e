package debug

// Snapshot is what we expose over /_debug/vault.
type Snapshot struct {
	Mode              string      `json:"mode"`
	Vault             string      `json:"vault"`
	Asset             string      `json:"asset"`
	Strategy          string      `json:"strategy,omitempty"`
	IdleBalance       uint64      `json:"idleBalance"`
	StrategyBalance   uint64      `json:"strategyBalance"`
	TotalManagedValue uint64      `json:"totalManagedValue"`
	TotalShareSupply  uint64      `json:"totalShareSupply"`
	OperationInFlight bool        `json:"operationInFlight"`
	RecentEvents      []EventView `json:"recentEvents"`
	Error             string      `json:"error,omitempty"`
}

// EventView is one audit trail entry as shown by the debug server.
type EventView struct {
	Seq    uint64 `json:"seq"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}
