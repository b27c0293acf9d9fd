package lottery

import (
	"math/big"

	"go.uber.org/zap"

	"backend/internal/events"
	"backend/internal/logger"
	"backend/internal/roles"
	"backend/internal/types"
)

// RequestDraw asks the randomness service for a new draw. The cooldown is
// measured from the previous request time, not from its resolution, so a new
// draw may be requested while an earlier one is still in flight.
func (e *Engine) RequestDraw(caller types.Address) (uint64, error) {
	if err := e.roles.Require(roles.RoleOperator, caller); err != nil {
		return 0, err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	now := e.now()
	if now.Before(e.lastDrawTime.Add(e.cooldown)) {
		return 0, ErrCooldownNotExpired
	}

	requestID, err := e.service.Request(e.params)
	if err != nil {
		return 0, err
	}

	e.draws[requestID] = &Draw{
		RequestID:   requestID,
		RequestedAt: now.Unix(),
	}
	e.drawOrder = append(e.drawOrder, requestID)
	e.lastRequestID = requestID
	e.lastDrawTime = now

	e.journal.Append(events.DrawRequested{RequestID: requestID, RequestedAt: now.Unix()})
	logger.Info("lottery: draw requested", zap.Uint64("request id", requestID))

	return requestID, nil
}

// OnRandomnessResolved is the randomness service callback. The eligible-holder
// list is read live at resolution time; holders may have changed since the
// request. An empty list resolves the draw with no winner. Otherwise the
// winner's pending gain is overwritten with the engine's entire current
// ledger balance.
func (e *Engine) OnRandomnessResolved(caller types.Address, requestID uint64, words []*big.Int) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if caller != e.serviceIdentity {
		return ErrNotRandomnessService
	}

	draw, ok := e.draws[requestID]
	if !ok {
		return ErrUnknownRequest
	}
	if draw.Resolved {
		return ErrAlreadyResolved
	}
	if len(words) == 0 {
		return ErrEmptyRandomness
	}

	holders := e.ledger.EligibleHolders()
	if len(holders) == 0 {
		draw.Resolved = true
		draw.Gain = big.NewInt(0)

		e.journal.Append(events.DrawResolved{RequestID: requestID, Gain: big.NewInt(0)})
		logger.Info("lottery: draw resolved without winner", zap.Uint64("request id", requestID))
		return nil
	}

	index := new(big.Int).Mod(words[0], big.NewInt(int64(len(holders))))
	winner := holders[index.Int64()].Address
	gain := e.ledger.BalanceOf(e.account)

	draw.Resolved = true
	draw.HasWinner = true
	draw.Winner = winner
	draw.Gain = new(big.Int).Set(gain)
	e.pending[winner] = new(big.Int).Set(gain)

	e.journal.Append(events.DrawResolved{
		RequestID: requestID,
		HasWinner: true,
		Winner:    winner,
		Gain:      new(big.Int).Set(gain),
	})
	logger.Info("lottery: winner selected",
		zap.Uint64("request id", requestID),
		zap.String("winner", string(winner)),
		zap.String("gain", gain.String()),
	)

	return nil
}
