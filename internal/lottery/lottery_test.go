package lottery

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/events"
	"backend/internal/ledger"
	"backend/internal/oracle"
	"backend/internal/random"
	"backend/internal/roles"
	"backend/internal/types"
)

const engineAccount = types.Address("lottery")

type fixture struct {
	engine  *Engine
	ledger  *ledger.Ledger
	service *random.Manual
	clock   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	asset := oracle.NewStaticFeed(big.NewInt(6_220_695_360))
	base := oracle.NewStaticFeed(big.NewInt(300_000_000_000))
	roleSet := roles.NewSet("owner")
	journal := events.NewJournal()

	ledgerRef := ledger.New(ledger.Config{
		Threshold:  big.NewInt(100),
		Treasury:   "treasury",
		RewardPool: "reward-pool",
	}, asset, base, roleSet, journal)

	service := random.NewManual("vrf-service")
	engine := New(Config{
		Account:         engineAccount,
		ServiceIdentity: "vrf-service",
		Cooldown:        time.Hour,
		Params:          random.RequestParams{SubscriptionID: 7, WordCount: 1},
	}, ledgerRef, service, roleSet, journal)
	service.Attach(engine)

	now := time.Unix(1_700_000_000, 0)
	engine.now = func() time.Time { return now }

	return &fixture{engine: engine, ledger: ledgerRef, service: service, clock: &now}
}

func (f *fixture) addHolder(account types.Address, balance int64) {
	f.ledger.RestoreBalance(account, big.NewInt(balance))
	f.ledger.RestoreHolder(account, f.clock.Unix())
}

func TestRequestDrawRequiresRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RequestDraw("mallory")
	assert.ErrorIs(t, err, roles.ErrMissingRole)
}

func TestRequestDrawCooldown(t *testing.T) {
	f := newFixture(t)

	first, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)

	_, err = f.engine.RequestDraw("owner")
	assert.ErrorIs(t, err, ErrCooldownNotExpired)

	*f.clock = f.clock.Add(time.Hour)

	second, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, f.engine.LastRequestID())
}

func TestOverlappingDrawsAllowed(t *testing.T) {
	f := newFixture(t)

	// the cooldown runs from request time, an unresolved draw does not
	// block the next request
	_, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)

	*f.clock = f.clock.Add(time.Hour)

	_, err = f.engine.RequestDraw("owner")
	require.NoError(t, err)

	draws := f.engine.Draws()
	require.Len(t, draws, 2)
	assert.False(t, draws[0].Resolved)
	assert.False(t, draws[1].Resolved)
}

func TestResolveSelectsWinner(t *testing.T) {
	f := newFixture(t)

	f.addHolder("alice", 1000)
	f.addHolder("bob", 1000)
	f.addHolder("carol", 1000)
	f.ledger.RestoreBalance(engineAccount, big.NewInt(7777))

	requestID, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)

	// index 4 mod 3 = 1 -> bob
	require.NoError(t, f.service.Resolve(requestID, []*big.Int{big.NewInt(4)}))

	winner, ok := f.engine.WinnerOf(requestID)
	require.True(t, ok)
	assert.Equal(t, types.Address("bob"), winner)
	assert.Equal(t, big.NewInt(7777), f.engine.PendingGain("bob"))
	assert.Equal(t, big.NewInt(0), f.engine.PendingGain("alice"))
}

func TestResolveCallerChecks(t *testing.T) {
	f := newFixture(t)
	f.addHolder("alice", 1000)

	requestID, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)

	err = f.service.ResolveAs("mallory", requestID, []*big.Int{big.NewInt(1)})
	assert.ErrorIs(t, err, ErrNotRandomnessService)

	err = f.service.Resolve(requestID+100, []*big.Int{big.NewInt(1)})
	assert.ErrorIs(t, err, ErrUnknownRequest)

	err = f.service.Resolve(requestID, nil)
	assert.ErrorIs(t, err, ErrEmptyRandomness)

	require.NoError(t, f.service.Resolve(requestID, []*big.Int{big.NewInt(1)}))

	err = f.service.Resolve(requestID, []*big.Int{big.NewInt(1)})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestResolveWithEmptyPool(t *testing.T) {
	f := newFixture(t)

	requestID, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)

	require.NoError(t, f.service.Resolve(requestID, []*big.Int{big.NewInt(9)}))

	_, ok := f.engine.WinnerOf(requestID)
	assert.False(t, ok)

	draws := f.engine.Draws()
	require.Len(t, draws, 1)
	assert.True(t, draws[0].Resolved)
	assert.False(t, draws[0].HasWinner)
}

func TestResolveReadsHoldersLive(t *testing.T) {
	f := newFixture(t)
	f.addHolder("alice", 1000)

	requestID, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)

	// bob joins between request and resolution and can win
	f.addHolder("bob", 1000)
	f.ledger.RestoreBalance(engineAccount, big.NewInt(500))

	require.NoError(t, f.service.Resolve(requestID, []*big.Int{big.NewInt(1)}))

	winner, ok := f.engine.WinnerOf(requestID)
	require.True(t, ok)
	assert.Equal(t, types.Address("bob"), winner)
}

func TestGainOverwrittenNotAccumulated(t *testing.T) {
	f := newFixture(t)
	f.addHolder("alice", 1000)
	f.ledger.RestoreBalance(engineAccount, big.NewInt(500))

	first, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)
	require.NoError(t, f.service.Resolve(first, []*big.Int{big.NewInt(0)}))
	assert.Equal(t, big.NewInt(500), f.engine.PendingGain("alice"))

	*f.clock = f.clock.Add(time.Hour)
	second, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)
	require.NoError(t, f.service.Resolve(second, []*big.Int{big.NewInt(0)}))

	// still 500, not 1000
	assert.Equal(t, big.NewInt(500), f.engine.PendingGain("alice"))
}

func TestClaim(t *testing.T) {
	f := newFixture(t)
	f.addHolder("alice", 1000)
	f.ledger.RestoreBalance(engineAccount, big.NewInt(500))

	_, err := f.engine.Claim("alice")
	assert.ErrorIs(t, err, ErrNoGainToClaim)

	requestID, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)
	require.NoError(t, f.service.Resolve(requestID, []*big.Int{big.NewInt(0)}))

	claimed, err := f.engine.Claim("alice")
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(500), claimed)
	assert.Equal(t, big.NewInt(0), f.engine.PendingGain("alice"))
	assert.Equal(t, big.NewInt(0), f.ledger.BalanceOf(engineAccount))
	assert.Equal(t, big.NewInt(1500), f.ledger.BalanceOf("alice"))

	_, err = f.engine.Claim("alice")
	assert.ErrorIs(t, err, ErrNoGainToClaim)
}

func TestClaimRestoresGainOnTransferFailure(t *testing.T) {
	f := newFixture(t)
	f.addHolder("alice", 1000)
	f.ledger.RestoreBalance(engineAccount, big.NewInt(500))

	requestID, err := f.engine.RequestDraw("owner")
	require.NoError(t, err)
	require.NoError(t, f.service.Resolve(requestID, []*big.Int{big.NewInt(0)}))

	// drain the engine account behind the engine's back; the payout
	// transfer now fails
	require.NoError(t, f.ledger.Transfer(engineAccount, "treasury", big.NewInt(500)))

	_, err = f.engine.Claim("alice")
	assert.ErrorIs(t, err, ErrTransferFailed)

	// the gain survives the failed claim
	assert.Equal(t, big.NewInt(500), f.engine.PendingGain("alice"))
}

func TestAdminSetters(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.engine.SetCooldown("mallory", time.Minute), roles.ErrMissingRole)

	require.NoError(t, f.engine.SetCooldown("owner", time.Minute))
	assert.Equal(t, time.Minute, f.engine.Cooldown())

	params := random.RequestParams{SubscriptionID: 9, RequestKey: "key", Confirmations: 3, CallbackBudget: 200_000, WordCount: 2, PayInNative: true}
	require.NoError(t, f.engine.SetParams("owner", params))
	assert.Equal(t, params, f.engine.Params())

	require.NoError(t, f.engine.SetServiceIdentity("owner", "other-service"))
	err := f.service.Resolve(1, []*big.Int{big.NewInt(1)})
	assert.ErrorIs(t, err, ErrNotRandomnessService)
}
