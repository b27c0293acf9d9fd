package bridge

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/events"
	"backend/internal/ledger"
	"backend/internal/oracle"
	"backend/internal/relay"
	"backend/internal/roles"
	"backend/internal/types"
)

const (
	chainA = types.ChainID(1)
	chainB = types.ChainID(2)
)

type fixture struct {
	relay   *relay.Loopback
	ledgerA *ledger.Ledger
	ledgerB *ledger.Ledger
	bridgeA *Bridge
	bridgeB *Bridge
}

func newTestLedger(t *testing.T, roleSet *roles.Set) *ledger.Ledger {
	t.Helper()

	asset := oracle.NewStaticFeed(big.NewInt(6_220_695_360))
	base := oracle.NewStaticFeed(big.NewInt(300_000_000_000))
	return ledger.New(ledger.Config{
		Threshold:  big.NewInt(0),
		Treasury:   "treasury",
		RewardPool: "reward-pool",
	}, asset, base, roleSet, events.NewJournal())
}

// newFixture wires two bridges on separate ledgers through one loopback
// relay: alice holds funds on chain A, the chain B bridge holds the release
// reserve.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	roleSet := roles.NewSet("owner")
	loopback := relay.NewLoopback("relay")
	journal := events.NewJournal()

	ledgerA := newTestLedger(t, roleSet)
	ledgerB := newTestLedger(t, roleSet)

	bridgeA := New(Config{
		Account:          "bridge-a",
		TokenAddress:     "token",
		FeeToken:         "fee-token",
		LocalChain:       chainA,
		DestinationChain: chainB,
		RelayIdentity:    loopback.Identity(),
	}, ledgerA, loopback, roleSet, journal)

	bridgeB := New(Config{
		Account:          "bridge-b",
		TokenAddress:     "token",
		FeeToken:         "fee-token",
		LocalChain:       chainB,
		DestinationChain: chainA,
		RelayIdentity:    loopback.Identity(),
	}, ledgerB, loopback, roleSet, journal)

	loopback.Connect(chainA, bridgeA)
	loopback.Connect(chainB, bridgeB)
	loopback.SetFee(chainB, big.NewInt(10))

	require.NoError(t, bridgeA.SetChainConfig("owner", chainB, ChainConfig{Enabled: true, GasBudget: 200_000}))
	require.NoError(t, bridgeB.SetChainConfig("owner", chainA, ChainConfig{Enabled: true, GasBudget: 200_000}))
	require.NoError(t, bridgeB.SetSenderWhitelisted("owner", "bridge-a", true))

	ledgerA.RestoreBalance("alice", big.NewInt(1000))
	ledgerB.RestoreBalance("bridge-b", big.NewInt(5000))

	return &fixture{
		relay:   loopback,
		ledgerA: ledgerA,
		ledgerB: ledgerB,
		bridgeA: bridgeA,
		bridgeB: bridgeB,
	}
}

func TestBridgeTokensReleasesOnRemote(t *testing.T) {
	f := newFixture(t)

	messageID, err := f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(10))
	require.NoError(t, err)
	require.NotEmpty(t, messageID)

	// escrowed on A, released from reserve on B
	assert.Equal(t, big.NewInt(600), f.ledgerA.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(400), f.ledgerA.BalanceOf("bridge-a"))
	assert.Equal(t, big.NewInt(4600), f.ledgerB.BalanceOf("bridge-b"))
	assert.Equal(t, big.NewInt(400), f.ledgerB.BalanceOf("bob"))

	assert.True(t, f.bridgeB.IsProcessed(messageID))
}

func TestDuplicateDeliveryReleasesOnce(t *testing.T) {
	f := newFixture(t)

	messageID, err := f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(10))
	require.NoError(t, err)

	err = f.relay.Redeliver(messageID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// balances unchanged after the duplicate
	assert.Equal(t, big.NewInt(400), f.ledgerB.BalanceOf("bob"))
	assert.Equal(t, big.NewInt(4600), f.ledgerB.BalanceOf("bridge-b"))
}

func TestBridgeTokensValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(0), FeeNative, big.NewInt(10))
	assert.ErrorIs(t, err, ErrAmountMustBePositive)

	require.NoError(t, f.bridgeA.SetChainConfig("owner", chainB, ChainConfig{Enabled: false}))
	_, err = f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(10))
	assert.ErrorIs(t, err, ErrChainNotWhitelisted)

	// rejected before any balance movement
	assert.Equal(t, big.NewInt(1000), f.ledgerA.BalanceOf("alice"))
}

func TestBridgeTokensNativeFee(t *testing.T) {
	f := newFixture(t)

	_, err := f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(3))
	assert.ErrorIs(t, err, ErrInsufficientFee)

	// escrow unwound
	assert.Equal(t, big.NewInt(1000), f.ledgerA.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(0), f.ledgerA.BalanceOf("bridge-a"))

	// overpay: the surplus stays in the native reserve
	_, err = f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(25))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(15), f.bridgeA.NativeReserve())
}

func TestBridgeTokensAlternateTokenFee(t *testing.T) {
	f := newFixture(t)

	_, err := f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeAlternateToken, nil)
	assert.ErrorIs(t, err, ErrInsufficientReserve)
	assert.Equal(t, big.NewInt(1000), f.ledgerA.BalanceOf("alice"))

	require.NoError(t, f.bridgeA.DepositTokenReserve("fee-token", big.NewInt(100)))

	_, err = f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeAlternateToken, nil)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(90), f.bridgeA.TokenReserve("fee-token"))
	assert.Equal(t, big.NewInt(400), f.ledgerB.BalanceOf("bob"))
}

func TestReceiveGates(t *testing.T) {
	f := newFixture(t)

	payload, err := EncodePayload("bob", big.NewInt(100))
	require.NoError(t, err)

	message := relay.Message{ID: "forged-1", SourceChain: chainA, Sender: "bridge-a", Payload: payload}

	err = f.bridgeB.OnMessageReceived("mallory", message)
	assert.ErrorIs(t, err, ErrNotRelay)

	message.SourceChain = types.ChainID(99)
	err = f.bridgeB.OnMessageReceived("relay", message)
	assert.ErrorIs(t, err, ErrChainNotWhitelisted)

	message.SourceChain = chainA
	message.Sender = "unknown-bridge"
	err = f.bridgeB.OnMessageReceived("relay", message)
	assert.ErrorIs(t, err, ErrSenderNotWhitelisted)

	// nothing moved through any rejected path
	assert.Equal(t, big.NewInt(0), f.ledgerB.BalanceOf("bob"))
	assert.Equal(t, big.NewInt(5000), f.ledgerB.BalanceOf("bridge-b"))

	message.Sender = "bridge-a"
	require.NoError(t, f.bridgeB.OnMessageReceived("relay", message))
	assert.Equal(t, big.NewInt(100), f.ledgerB.BalanceOf("bob"))
}

func TestReceiveZeroAmount(t *testing.T) {
	f := newFixture(t)

	payload := make([]byte, amountWidth)
	payload = append(payload, []byte("bob")...)

	message := relay.Message{ID: "forged-2", SourceChain: chainA, Sender: "bridge-a", Payload: payload}
	err := f.bridgeB.OnMessageReceived("relay", message)
	assert.ErrorIs(t, err, ErrAmountMustBePositive)
	assert.False(t, f.bridgeB.IsProcessed("forged-2"))
}

func TestReceiveReleaseFailureUnmarksMessage(t *testing.T) {
	f := newFixture(t)

	payload, err := EncodePayload("bob", big.NewInt(9000))
	require.NoError(t, err)

	// reserve on B is only 5000
	message := relay.Message{ID: "forged-3", SourceChain: chainA, Sender: "bridge-a", Payload: payload}
	err = f.bridgeB.OnMessageReceived("relay", message)
	assert.ErrorIs(t, err, ErrReleaseTransferFailed)
	assert.False(t, f.bridgeB.IsProcessed("forged-3"))
}

func TestPauseGatesBothDirections(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.bridgeA.Pause("owner"))
	_, err := f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(10))
	assert.ErrorIs(t, err, ErrPaused)

	require.NoError(t, f.bridgeB.Pause("owner"))
	payload, err := EncodePayload("bob", big.NewInt(100))
	require.NoError(t, err)
	err = f.bridgeB.OnMessageReceived("relay", relay.Message{ID: "m", SourceChain: chainA, Sender: "bridge-a", Payload: payload})
	assert.ErrorIs(t, err, ErrPaused)

	require.NoError(t, f.bridgeA.Unpause("owner"))
	_, err = f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(10))
	require.NoError(t, err)
}

func TestWithdrawals(t *testing.T) {
	f := newFixture(t)

	_, err := f.bridgeA.BridgeTokens("alice", "bob", big.NewInt(400), FeeNative, big.NewInt(30))
	require.NoError(t, err)

	assert.ErrorIs(t, f.bridgeA.WithdrawToken("mallory", "token", "mallory", big.NewInt(1)), roles.ErrMissingRole)

	// ledger-token withdrawal leaves through the escrow account
	require.NoError(t, f.bridgeA.WithdrawToken("owner", "token", "beneficiary", big.NewInt(100)))
	assert.Equal(t, big.NewInt(300), f.ledgerA.BalanceOf("bridge-a"))
	assert.Equal(t, big.NewInt(100), f.ledgerA.BalanceOf("beneficiary"))

	// fee-token withdrawal debits the internal reserve
	require.NoError(t, f.bridgeA.DepositTokenReserve("fee-token", big.NewInt(50)))
	require.NoError(t, f.bridgeA.WithdrawToken("owner", "fee-token", "beneficiary", big.NewInt(20)))
	assert.Equal(t, big.NewInt(30), f.bridgeA.TokenReserve("fee-token"))

	withdrawn, err := f.bridgeA.WithdrawNative("owner", "beneficiary")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20), withdrawn)
	assert.Equal(t, big.NewInt(0), f.bridgeA.NativeReserve())
}

func TestPayloadCodec(t *testing.T) {
	payload, err := EncodePayload("some-receiver", big.NewInt(123456))
	require.NoError(t, err)

	receiver, amount, err := DecodePayload(payload)
	require.NoError(t, err)
	assert.Equal(t, types.Address("some-receiver"), receiver)
	assert.Equal(t, big.NewInt(123456), amount)

	_, _, err = DecodePayload(payload[:amountWidth])
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = EncodePayload("", big.NewInt(1))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = EncodePayload("receiver", big.NewInt(-1))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
