package lottery

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"backend/internal/events"
	"backend/internal/ledger"
	"backend/internal/random"
	"backend/internal/roles"
	"backend/internal/types"
)

var (
	ErrCooldownNotExpired   = errors.New("draw cooldown has not expired")
	ErrNotRandomnessService = errors.New("caller is not the randomness service")
	ErrUnknownRequest       = errors.New("unknown draw request")
	ErrAlreadyResolved      = errors.New("draw request already resolved")
	ErrEmptyRandomness      = errors.New("randomness delivered no words")
	ErrNoGainToClaim        = errors.New("no gain to claim")
	ErrTransferFailed       = errors.New("gain transfer failed")
	ErrReentrantCall        = errors.New("reentrant call")
)

// DefaultCooldown separates consecutive draw requests.
const DefaultCooldown = 24 * time.Hour

// Draw is one request/resolve cycle. Draw history is append-only; a draw is
// resolved exactly once and stays open indefinitely if the randomness service
// never answers.
type Draw struct {
	RequestID   uint64
	RequestedAt int64
	Resolved    bool
	HasWinner   bool
	Winner      types.Address
	Gain        *big.Int
}

type Config struct {
	Account         types.Address
	ServiceIdentity types.Address
	Params          random.RequestParams
	Cooldown        time.Duration
}

// Engine runs the reward lottery over the ledger's eligible-holder set. It
// owns draw history and pending gains and moves funds only through the
// ledger's transfer operation.
type Engine struct {
	mutex sync.Mutex

	ledger  *ledger.Ledger
	service random.Service

	account         types.Address
	serviceIdentity types.Address
	params          random.RequestParams
	cooldown        time.Duration
	lastDrawTime    time.Time

	draws         map[uint64]*Draw
	drawOrder     []uint64
	lastRequestID uint64

	pending map[types.Address]*big.Int

	claiming bool

	roles   *roles.Set
	journal *events.Journal
	now     func() time.Time
}

func New(config Config, ledgerRef *ledger.Ledger, service random.Service, roleSet *roles.Set, journal *events.Journal) *Engine {
	cooldown := config.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}

	return &Engine{
		ledger:          ledgerRef,
		service:         service,
		account:         config.Account,
		serviceIdentity: config.ServiceIdentity,
		params:          config.Params,
		cooldown:        cooldown,
		draws:           map[uint64]*Draw{},
		pending:         map[types.Address]*big.Int{},
		roles:           roleSet,
		journal:         journal,
		now:             time.Now,
	}
}

// Account returns the engine's own ledger account, which holds the prize pot.
func (e *Engine) Account() types.Address {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.account
}

func (e *Engine) LastRequestID() uint64 {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.lastRequestID
}

func (e *Engine) Cooldown() time.Duration {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.cooldown
}

func (e *Engine) Params() random.RequestParams {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.params
}

func (e *Engine) PendingGain(account types.Address) *big.Int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if gain, ok := e.pending[account]; ok {
		return new(big.Int).Set(gain)
	}
	return big.NewInt(0)
}

// WinnerOf returns the resolved winner of a request id. The second result is
// false while the draw is unresolved, unknown, or resolved without a winner.
func (e *Engine) WinnerOf(requestID uint64) (types.Address, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	draw, ok := e.draws[requestID]
	if !ok || !draw.Resolved || !draw.HasWinner {
		return types.AddressZero, false
	}
	return draw.Winner, true
}

// Draws returns the full draw history in request order.
func (e *Engine) Draws() []Draw {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	out := make([]Draw, 0, len(e.drawOrder))
	for _, requestID := range e.drawOrder {
		draw := *e.draws[requestID]
		if draw.Gain != nil {
			draw.Gain = new(big.Int).Set(draw.Gain)
		}
		out = append(out, draw)
	}
	return out
}

// PendingGains returns a copy of every nonzero pending gain.
func (e *Engine) PendingGains() map[types.Address]*big.Int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	out := make(map[types.Address]*big.Int, len(e.pending))
	for account, gain := range e.pending {
		out[account] = new(big.Int).Set(gain)
	}
	return out
}

// LastDrawTime returns the time of the most recent draw request.
func (e *Engine) LastDrawTime() time.Time {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.lastDrawTime
}

// RestoreDraw re-adds a persisted draw during boot.
func (e *Engine) RestoreDraw(draw Draw) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	stored := draw
	if stored.Gain != nil {
		stored.Gain = new(big.Int).Set(stored.Gain)
	}
	e.draws[stored.RequestID] = &stored
	e.drawOrder = append(e.drawOrder, stored.RequestID)
	if stored.RequestID > e.lastRequestID {
		e.lastRequestID = stored.RequestID
	}
	if requested := time.Unix(stored.RequestedAt, 0); requested.After(e.lastDrawTime) {
		e.lastDrawTime = requested
	}
}

// RestorePendingGain re-adds a persisted pending gain during boot.
func (e *Engine) RestorePendingGain(account types.Address, gain *big.Int) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if gain.Sign() > 0 {
		e.pending[account] = new(big.Int).Set(gain)
	}
}
