package ledger

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/events"
	"backend/internal/oracle"
	"backend/internal/roles"
	"backend/internal/types"
)

// assetAnswer makes the derived price exactly 2e18 (2 native per whole
// token): 6_220_695_360 * 1e7 / 311_034_768 = 2e8, lifted by 1e10.
const assetAnswer = 6_220_695_360

func newTestLedger(t *testing.T, threshold *big.Int) (*Ledger, *oracle.StaticFeed) {
	t.Helper()

	asset := oracle.NewStaticFeed(big.NewInt(assetAnswer))
	base := oracle.NewStaticFeed(big.NewInt(300_000_000_000))
	ledger := New(Config{
		Threshold:  threshold,
		Treasury:   "treasury",
		RewardPool: "reward-pool",
	}, asset, base, roles.NewSet("owner"), events.NewJournal())

	return ledger, asset
}

func TestDerivedPrice(t *testing.T) {
	ledger, _ := newTestLedger(t, nil)

	price, base, err := ledger.CurrentPrice()
	require.NoError(t, err)

	expected, _ := new(big.Int).SetString("2000000000000000000", 10)
	assert.Equal(t, expected, price)
	assert.Equal(t, big.NewInt(300_000_000_000), base)
}

func TestMintSplitsFee(t *testing.T) {
	ledger, _ := newTestLedger(t, nil)

	user, err := ledger.Mint("alice", big.NewInt(10000))
	require.NoError(t, err)

	// gross 5000, fee 250, split 125/125
	assert.Equal(t, big.NewInt(4750), user)
	assert.Equal(t, big.NewInt(4750), ledger.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(125), ledger.BalanceOf("reward-pool"))
	assert.Equal(t, big.NewInt(125), ledger.BalanceOf("treasury"))
	assert.Equal(t, big.NewInt(5000), ledger.TotalSupply())

	assert.True(t, ledger.IsEligible("alice"))
	assert.False(t, ledger.IsEligible("reward-pool"))
	assert.False(t, ledger.IsEligible("treasury"))
}

func TestMintConservation(t *testing.T) {
	ledger, _ := newTestLedger(t, nil)

	for deposit := int64(10000); deposit < 10040; deposit++ {
		before := ledger.TotalSupply()

		user, err := ledger.Mint("alice", big.NewInt(deposit))
		require.NoError(t, err)

		pool := ledger.BalanceOf("reward-pool")
		treasury := ledger.BalanceOf("treasury")
		supply := ledger.TotalSupply()

		// supply grows by exactly user + pool + treasury
		assert.Equal(t, supply, new(big.Int).Add(ledger.BalanceOf("alice"), new(big.Int).Add(pool, treasury)))
		assert.True(t, supply.Cmp(before) > 0)
		assert.True(t, user.Sign() > 0)

		// the two fee shares differ by at most one minimal unit
		diff := new(big.Int).Sub(treasury, pool)
		assert.True(t, diff.CmpAbs(big.NewInt(1)) <= 0)
	}
}

func TestMintValidation(t *testing.T) {
	ledger, asset := newTestLedger(t, nil)

	_, err := ledger.Mint("alice", big.NewInt(0))
	assert.ErrorIs(t, err, ErrValueMustBePositive)

	_, err = ledger.Mint("alice", nil)
	assert.ErrorIs(t, err, ErrValueMustBePositive)

	// deposit too small to mint a single minimal unit
	_, err = ledger.Mint("alice", big.NewInt(1))
	assert.ErrorIs(t, err, ErrAmountMustBePositive)

	asset.SetAnswer(big.NewInt(0))
	_, err = ledger.Mint("alice", big.NewInt(10000))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	asset.SetAnswer(big.NewInt(-42))
	_, err = ledger.Mint("alice", big.NewInt(10000))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assert.Equal(t, big.NewInt(0), ledger.TotalSupply())
}

func TestBurn(t *testing.T) {
	ledger, _ := newTestLedger(t, big.NewInt(100))

	ledger.RestoreBalance("alice", big.NewInt(1000))
	ledger.RestoreHolder("alice", time.Now().Unix())

	err := ledger.Burn("alice", big.NewInt(2000))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	err = ledger.Burn("alice", big.NewInt(0))
	assert.ErrorIs(t, err, ErrAmountMustBePositive)

	require.NoError(t, ledger.Burn("alice", big.NewInt(500)))
	assert.Equal(t, big.NewInt(500), ledger.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(500), ledger.TotalSupply())
	assert.True(t, ledger.IsEligible("alice"))

	// dropping to the threshold or below leaves the eligible set
	require.NoError(t, ledger.Burn("alice", big.NewInt(400)))
	assert.False(t, ledger.IsEligible("alice"))
}

func TestTransferEligibility(t *testing.T) {
	ledger, _ := newTestLedger(t, big.NewInt(100))

	ledger.RestoreBalance("alice", big.NewInt(1000))
	ledger.RestoreHolder("alice", time.Now().Unix())

	err := ledger.Transfer("alice", "bob", big.NewInt(0))
	assert.ErrorIs(t, err, ErrAmountMustBePositive)

	require.NoError(t, ledger.Transfer("alice", "bob", big.NewInt(950)))

	assert.Equal(t, big.NewInt(50), ledger.BalanceOf("alice"))
	assert.Equal(t, big.NewInt(950), ledger.BalanceOf("bob"))

	// sender dropped below threshold, recipient registered
	assert.False(t, ledger.IsEligible("alice"))
	assert.True(t, ledger.IsEligible("bob"))

	// bob sends almost everything away to an under-threshold recipient;
	// carol joins the set and is never re-checked against the threshold
	require.NoError(t, ledger.Transfer("bob", "carol", big.NewInt(60)))
	assert.True(t, ledger.IsEligible("carol"))
}

func TestRewardPoolExemptFromRemoval(t *testing.T) {
	ledger, _ := newTestLedger(t, big.NewInt(100))

	ledger.RestoreBalance("reward-pool", big.NewInt(1000))
	ledger.RestoreHolder("reward-pool", time.Now().Unix())

	require.NoError(t, ledger.Transfer("reward-pool", "winner", big.NewInt(980)))
	assert.True(t, ledger.IsEligible("reward-pool"))
}

func TestRemovedHolderRejoinsOnReceipt(t *testing.T) {
	ledger, _ := newTestLedger(t, big.NewInt(100))

	ledger.RestoreBalance("alice", big.NewInt(1000))
	ledger.RestoreHolder("alice", time.Now().Unix())

	require.NoError(t, ledger.Transfer("alice", "bob", big.NewInt(950)))
	assert.False(t, ledger.IsEligible("alice"))

	require.NoError(t, ledger.Transfer("bob", "alice", big.NewInt(500)))
	assert.True(t, ledger.IsEligible("alice"))
}

func TestHolderRemovalSwapPop(t *testing.T) {
	ledger, _ := newTestLedger(t, big.NewInt(0))

	accounts := []types.Address{"a", "b", "c", "d"}
	for _, account := range accounts {
		ledger.RestoreBalance(account, big.NewInt(1000))
		ledger.RestoreHolder(account, time.Now().Unix())
	}

	require.NoError(t, ledger.Transfer("b", "a", big.NewInt(1000)))

	holders := ledger.EligibleHolders()
	assert.Len(t, holders, 3)
	for _, holder := range holders {
		assert.NotEqual(t, types.Address("b"), holder.Address)
	}
}

func TestPauseGatesMintAndBurnOnly(t *testing.T) {
	ledger, _ := newTestLedger(t, nil)

	ledger.RestoreBalance("alice", big.NewInt(1000))

	err := ledger.Pause("mallory")
	assert.ErrorIs(t, err, roles.ErrMissingRole)

	require.NoError(t, ledger.Pause("owner"))

	_, err = ledger.Mint("alice", big.NewInt(10000))
	assert.ErrorIs(t, err, ErrPaused)

	err = ledger.Burn("alice", big.NewInt(100))
	assert.ErrorIs(t, err, ErrPaused)

	// transfers run while paused
	require.NoError(t, ledger.Transfer("alice", "bob", big.NewInt(100)))

	require.NoError(t, ledger.Unpause("owner"))
	_, err = ledger.Mint("alice", big.NewInt(10000))
	require.NoError(t, err)
}

func TestAdminSetters(t *testing.T) {
	ledger, _ := newTestLedger(t, nil)

	assert.ErrorIs(t, ledger.SetFeePercent("mallory", 10), roles.ErrMissingRole)
	assert.ErrorIs(t, ledger.SetTreasury("mallory", "elsewhere"), roles.ErrMissingRole)

	require.NoError(t, ledger.SetFeePercent("owner", 10))
	assert.Equal(t, int64(10), ledger.FeePercent())

	assert.Error(t, ledger.SetFeePercent("owner", 101))

	require.NoError(t, ledger.SetTreasury("owner", "vault"))
	assert.Equal(t, types.Address("vault"), ledger.Treasury())

	require.NoError(t, ledger.SetRewardPool("owner", "pot"))
	assert.Equal(t, types.Address("pot"), ledger.RewardPool())

	require.NoError(t, ledger.SetThreshold("owner", big.NewInt(42)))
	assert.Equal(t, big.NewInt(42), ledger.Threshold())
}
