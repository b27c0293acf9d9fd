package bridge

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"backend/internal/events"
	"backend/internal/ledger"
	"backend/internal/relay"
	"backend/internal/roles"
	"backend/internal/types"
)

var (
	ErrPaused                = errors.New("bridge is paused")
	ErrAmountMustBePositive  = errors.New("amount must be positive")
	ErrChainNotWhitelisted   = errors.New("chain is not whitelisted")
	ErrSenderNotWhitelisted  = errors.New("sender is not whitelisted")
	ErrNotRelay              = errors.New("caller is not the relay")
	ErrAlreadyProcessed      = errors.New("message already processed")
	ErrInsufficientFee       = errors.New("attached value below relay fee")
	ErrInsufficientReserve   = errors.New("insufficient token reserve")
	ErrEscrowTransferFailed  = errors.New("escrow transfer failed")
	ErrReleaseTransferFailed = errors.New("release transfer failed")
)

// FeeMode selects how the relay fee for an outbound message is paid.
type FeeMode int

const (
	// FeeNative pays the relay from value attached to the call.
	FeeNative FeeMode = iota
	// FeeAlternateToken pays the relay from the bridge's reserve of the
	// configured fee token.
	FeeAlternateToken
)

// ChainConfig is the whitelist entry for a counterparty chain together with
// the relay execution parameters used when sending to it.
type ChainConfig struct {
	Enabled    bool
	GasBudget  uint64
	OutOfOrder bool
}

type Config struct {
	Account          types.Address
	TokenAddress     types.Address
	FeeToken         types.Address
	LocalChain       types.ChainID
	DestinationChain types.ChainID
	RelayIdentity    types.Address
}

// Bridge moves ledger tokens between chains by escrowing on send and
// releasing from local reserve on receive. Each chain runs one independent
// instance; tokens are never minted or burned across chains.
type Bridge struct {
	mutex sync.Mutex

	ledger *ledger.Ledger
	relay  relay.Relay

	account          types.Address
	tokenAddress     types.Address
	feeToken         types.Address
	localChain       types.ChainID
	destinationChain types.ChainID
	relayIdentity    types.Address

	chains    map[types.ChainID]ChainConfig
	senders   map[types.Address]bool
	processed map[string]ProcessedMessage

	nativeReserve *big.Int
	reserves      map[types.Address]*big.Int

	paused bool

	roles   *roles.Set
	journal *events.Journal
	now     func() time.Time
}

// ProcessedMessage is one entry of the permanent duplicate-detection set.
type ProcessedMessage struct {
	MessageID   string
	SourceChain types.ChainID
	ReceivedAt  int64
}

func New(config Config, ledgerRef *ledger.Ledger, relayRef relay.Relay, roleSet *roles.Set, journal *events.Journal) *Bridge {
	return &Bridge{
		ledger:           ledgerRef,
		relay:            relayRef,
		account:          config.Account,
		tokenAddress:     config.TokenAddress,
		feeToken:         config.FeeToken,
		localChain:       config.LocalChain,
		destinationChain: config.DestinationChain,
		relayIdentity:    config.RelayIdentity,
		chains:           map[types.ChainID]ChainConfig{},
		senders:          map[types.Address]bool{},
		processed:        map[string]ProcessedMessage{},
		nativeReserve:    big.NewInt(0),
		reserves:         map[types.Address]*big.Int{},
		roles:            roleSet,
		journal:          journal,
		now:              time.Now,
	}
}

// Account returns the bridge's escrow account on the ledger.
func (b *Bridge) Account() types.Address {
	return b.account
}

func (b *Bridge) Paused() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.paused
}

func (b *Bridge) IsProcessed(messageID string) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	_, ok := b.processed[messageID]
	return ok
}

// ProcessedMessages returns the duplicate-detection set for snapshotting.
func (b *Bridge) ProcessedMessages() []ProcessedMessage {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	out := make([]ProcessedMessage, 0, len(b.processed))
	for _, record := range b.processed {
		out = append(out, record)
	}
	return out
}

func (b *Bridge) ChainConfigOf(chain types.ChainID) (ChainConfig, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	config, ok := b.chains[chain]
	return config, ok
}

// Chains returns the chain whitelist for snapshotting.
func (b *Bridge) Chains() map[types.ChainID]ChainConfig {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	out := make(map[types.ChainID]ChainConfig, len(b.chains))
	for chain, config := range b.chains {
		out[chain] = config
	}
	return out
}

func (b *Bridge) IsSenderWhitelisted(sender types.Address) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.senders[sender]
}

// Senders returns the sender whitelist for snapshotting.
func (b *Bridge) Senders() []types.Address {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	out := make([]types.Address, 0, len(b.senders))
	for sender, enabled := range b.senders {
		if enabled {
			out = append(out, sender)
		}
	}
	return out
}

func (b *Bridge) NativeReserve() *big.Int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return new(big.Int).Set(b.nativeReserve)
}

// TokenReserve returns the bridge's reserve of a non-ledger token such as the
// fee asset.
func (b *Bridge) TokenReserve(token types.Address) *big.Int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if reserve, ok := b.reserves[token]; ok {
		return new(big.Int).Set(reserve)
	}
	return big.NewInt(0)
}

// DepositNative funds the bridge's native reserve.
func (b *Bridge) DepositNative(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.nativeReserve.Add(b.nativeReserve, amount)
	return nil
}

// DepositTokenReserve funds the bridge's reserve of a non-ledger token.
func (b *Bridge) DepositTokenReserve(token types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	reserve, ok := b.reserves[token]
	if !ok {
		reserve = big.NewInt(0)
		b.reserves[token] = reserve
	}
	reserve.Add(reserve, amount)
	return nil
}

// RestoreProcessed re-adds a persisted processed-message record during boot.
func (b *Bridge) RestoreProcessed(record ProcessedMessage) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.processed[record.MessageID] = record
}

// RestoreChain re-adds a persisted chain whitelist entry during boot.
func (b *Bridge) RestoreChain(chain types.ChainID, config ChainConfig) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.chains[chain] = config
}

// RestoreSender re-adds a persisted sender whitelist entry during boot.
func (b *Bridge) RestoreSender(sender types.Address) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.senders[sender] = true
}
