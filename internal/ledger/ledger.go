package ledger

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"backend/internal/events"
	"backend/internal/oracle"
	"backend/internal/roles"
	"backend/internal/types"
)

var (
	ErrValueMustBePositive  = errors.New("value must be positive")
	ErrAmountMustBePositive = errors.New("amount must be positive")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrPaused               = errors.New("ledger is paused")
)

// DefaultFeePercent is charged on every mint and split between the reward
// pool and the treasury.
const DefaultFeePercent = int64(5)

type Config struct {
	FeePercent int64
	Threshold  *big.Int
	Treasury   types.Address
	RewardPool types.Address
}

// Ledger is the fungible balance store. It owns the balance map, total supply
// and the eligible-holder set; every operation either completes fully or
// leaves state unchanged.
type Ledger struct {
	mutex sync.RWMutex

	balances    map[types.Address]*big.Int
	totalSupply *big.Int

	holders     []Holder
	holderIndex map[types.Address]int
	firstSeen   map[types.Address]int64

	feePercent int64
	threshold  *big.Int
	treasury   types.Address
	rewardPool types.Address
	paused     bool

	assetFeed oracle.PriceFeed
	baseFeed  oracle.PriceFeed

	roles   *roles.Set
	journal *events.Journal
	now     func() time.Time
}

func New(config Config, assetFeed oracle.PriceFeed, baseFeed oracle.PriceFeed, roleSet *roles.Set, journal *events.Journal) *Ledger {
	feePercent := config.FeePercent
	if feePercent == 0 {
		feePercent = DefaultFeePercent
	}

	threshold := config.Threshold
	if threshold == nil {
		threshold = types.Unit()
	}

	return &Ledger{
		balances:    map[types.Address]*big.Int{},
		totalSupply: big.NewInt(0),
		holderIndex: map[types.Address]int{},
		firstSeen:   map[types.Address]int64{},
		feePercent:  feePercent,
		threshold:   new(big.Int).Set(threshold),
		treasury:    config.Treasury,
		rewardPool:  config.RewardPool,
		assetFeed:   assetFeed,
		baseFeed:    baseFeed,
		roles:       roleSet,
		journal:     journal,
		now:         time.Now,
	}
}

func (l *Ledger) BalanceOf(account types.Address) *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.balanceOf(account)
}

func (l *Ledger) balanceOf(account types.Address) *big.Int {
	if balance, ok := l.balances[account]; ok {
		return new(big.Int).Set(balance)
	}
	return big.NewInt(0)
}

func (l *Ledger) TotalSupply() *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return new(big.Int).Set(l.totalSupply)
}

// Balances returns a copy of the whole balance map for snapshotting.
func (l *Ledger) Balances() map[types.Address]*big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	out := make(map[types.Address]*big.Int, len(l.balances))
	for account, balance := range l.balances {
		out[account] = new(big.Int).Set(balance)
	}
	return out
}

func (l *Ledger) FeePercent() int64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.feePercent
}

func (l *Ledger) Threshold() *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return new(big.Int).Set(l.threshold)
}

func (l *Ledger) Treasury() types.Address {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.treasury
}

func (l *Ledger) RewardPool() types.Address {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.rewardPool
}

func (l *Ledger) Paused() bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.paused
}

// credit adds amount to account without any checks. Callers hold the lock.
func (l *Ledger) credit(account types.Address, amount *big.Int) {
	balance, ok := l.balances[account]
	if !ok {
		balance = big.NewInt(0)
		l.balances[account] = balance
	}
	balance.Add(balance, amount)
}

// RestoreBalance installs a persisted balance during boot. Total supply is
// adjusted so the conservation invariant holds after restore.
func (l *Ledger) RestoreBalance(account types.Address, amount *big.Int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	previous := l.balances[account]
	if previous != nil {
		l.totalSupply.Sub(l.totalSupply, previous)
	}
	l.balances[account] = new(big.Int).Set(amount)
	l.totalSupply.Add(l.totalSupply, amount)
}
