package storage

// Amounts are persisted as decimal strings; sqlite integers cannot hold
// 18-decimal token amounts.

type BalanceRecord struct {
	Address string `gorm:"primaryKey"`
	Amount  string `gorm:"not null"`
}

type EligibleHolderRecord struct {
	Address   string `gorm:"primaryKey"`
	UpdatedAt int64  `gorm:"not null"`
}

type DrawRecord struct {
	RequestID   uint64 `gorm:"primaryKey"`
	RequestedAt int64  `gorm:"not null"`
	Resolved    uint8  `gorm:"default:0"`
	HasWinner   uint8  `gorm:"default:0"`
	Winner      string `gorm:"default:''"`
	Gain        string `gorm:"default:'0'"`
}

type PendingGainRecord struct {
	Address string `gorm:"primaryKey"`
	Amount  string `gorm:"not null"`
}

type ProcessedMessageRecord struct {
	MessageID   string `gorm:"primaryKey"`
	SourceChain uint64 `gorm:"not null"`
	ReceivedAt  int64  `gorm:"not null"`
}

type ChainWhitelistRecord struct {
	ChainID    uint64 `gorm:"primaryKey"`
	Enabled    uint8  `gorm:"default:0"`
	GasBudget  uint64 `gorm:"default:0"`
	OutOfOrder uint8  `gorm:"default:0"`
}

type SenderWhitelistRecord struct {
	Address string `gorm:"primaryKey"`
}

type RoleRecord struct {
	Role    string `gorm:"primaryKey"`
	Address string `gorm:"primaryKey"`
}

type ParamRecord struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

type EventRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Type      string `gorm:"index;not null"`
	Payload   string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
}
