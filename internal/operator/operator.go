package operator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/bridge"
	"backend/internal/events"
	"backend/internal/ledger"
	"backend/internal/logger"
	"backend/internal/lottery"
	"backend/internal/roles"
	"backend/internal/storage"
	"backend/internal/types"
)

// Operator drives the periodic duties of the backend: restoring persisted
// state at boot, requesting lottery draws when the cooldown allows, and
// snapshotting the data model after each cycle. It acts under its own
// identity, which must hold the operator role.
type Operator struct {
	ctx      context.Context
	storage  storage.Storage
	ledger   *ledger.Ledger
	lottery  *lottery.Engine
	bridge   *bridge.Bridge
	roles    *roles.Set
	journal  *events.Journal
	identity types.Address
}

type Func[T any] func() (T, error)

// retryTransient retries fn a few times with a fixed delay. Used around
// external reads that fail transiently, such as the price feeds.
func retryTransient[T any](attempts int, delay time.Duration, fn Func[T]) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt < attempts; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}
		time.Sleep(delay)
	}

	return result, err
}

func NewOperator(
	ctx context.Context,
	storageRef storage.Storage,
	ledgerRef *ledger.Ledger,
	lotteryRef *lottery.Engine,
	bridgeRef *bridge.Bridge,
	roleSet *roles.Set,
	journal *events.Journal,
	identity types.Address,
) *Operator {
	return &Operator{
		ctx:      ctx,
		storage:  storageRef,
		ledger:   ledgerRef,
		lottery:  lotteryRef,
		bridge:   bridgeRef,
		roles:    roleSet,
		journal:  journal,
		identity: identity,
	}
}

// Run performs one operator cycle.
func (o *Operator) Run() {

	cyclesTotal.Inc()

	_, err := retryTransient(3, 500*time.Millisecond, func() (struct{}, error) {
		unit, base, err := o.ledger.CurrentPrice()
		if err != nil {
			return struct{}{}, err
		}
		logger.Debug("operator: price feeds healthy",
			zap.String("unit price", unit.String()),
			zap.String("base answer", base.String()),
		)
		return struct{}{}, nil
	})
	if err != nil {
		logger.Warn("operator: price feeds unavailable", zap.Error(err))
		priceFeedFailuresTotal.Inc()
	}

	requestID, err := o.lottery.RequestDraw(o.identity)
	switch {
	case err == nil:
		drawsRequestedTotal.Inc()
		logger.Info("operator: draw requested", zap.Uint64("request id", requestID))
	case errors.Is(err, lottery.ErrCooldownNotExpired):
		logger.Debug("operator: draw cooldown still running")
	default:
		logger.Error("operator: draw request failed", zap.Error(err))
	}

	if err := o.Snapshot(); err != nil {
		snapshotFailuresTotal.Inc()
		logger.Error("operator: snapshot failed", zap.Error(err))
	}
}

func (o *Operator) Finalize() {
	if err := o.Snapshot(); err != nil {
		logger.Error("operator: final snapshot failed", zap.Error(err))
	}
	logger.Info("operator stopped")
}
