package storage

// Storage persists the whole data model: balances, the eligible-holder set,
// draw history, pending gains, the processed-message set, the bridge
// whitelists, role memberships, tunable parameters and the event log.
type Storage interface {
	// ledger
	GetBalances() ([]*BalanceRecord, error)
	UpdateBalances(records []*BalanceRecord) error
	GetEligibleHolders() ([]*EligibleHolderRecord, error)
	ReplaceEligibleHolders(records []*EligibleHolderRecord) error

	// lottery
	GetDraws() ([]*DrawRecord, error)
	UpdateDraws(records []*DrawRecord) error
	GetPendingGains() ([]*PendingGainRecord, error)
	ReplacePendingGains(records []*PendingGainRecord) error

	// bridge
	GetProcessedMessages() ([]*ProcessedMessageRecord, error)
	UpdateProcessedMessages(records []*ProcessedMessageRecord) error
	GetChainWhitelist() ([]*ChainWhitelistRecord, error)
	UpdateChainWhitelist(records []*ChainWhitelistRecord) error
	GetSenderWhitelist() ([]*SenderWhitelistRecord, error)
	ReplaceSenderWhitelist(records []*SenderWhitelistRecord) error

	// roles
	GetRoles() ([]*RoleRecord, error)
	ReplaceRoles(records []*RoleRecord) error

	// tunable parameters
	GetParam(key string) (string, error)
	UpdateParam(key string, value string) error

	// event log
	AppendEvents(records []*EventRecord) error
}

// Parameter keys persisted across restarts.
const (
	ParamFeePercent      = "fee_percent"
	ParamThreshold       = "eligibility_threshold"
	ParamTreasury        = "treasury"
	ParamRewardPool      = "reward_pool"
	ParamCooldownSeconds = "draw_cooldown_seconds"
	ParamLedgerPaused    = "ledger_paused"
	ParamBridgePaused    = "bridge_paused"
)
