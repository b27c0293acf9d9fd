package ledger

import (
	"backend/internal/types"
)

// Holder is a member of the eligible set together with the timestamp of its
// registration.
type Holder struct {
	Address   types.Address
	UpdatedAt int64
}

// registerHolder adds an account to the eligible set if it is not currently
// tracked. Callers hold the lock.
func (l *Ledger) registerHolder(account types.Address) {
	if l.firstSeen[account] != 0 {
		return
	}

	timestamp := l.now().Unix()
	l.firstSeen[account] = timestamp
	l.holderIndex[account] = len(l.holders)
	l.holders = append(l.holders, Holder{Address: account, UpdatedAt: timestamp})
}

// removeHolder drops an account from the eligible set with a swap-pop against
// the index map, and clears its timestamp so a later receipt registers it
// again. Callers hold the lock.
func (l *Ledger) removeHolder(account types.Address) {
	position, ok := l.holderIndex[account]
	if !ok {
		return
	}

	last := len(l.holders) - 1
	if position != last {
		moved := l.holders[last]
		l.holders[position] = moved
		l.holderIndex[moved.Address] = position
	}
	l.holders = l.holders[:last]
	delete(l.holderIndex, account)
	delete(l.firstSeen, account)
}

// EligibleHolders returns the current eligible set. The order is internal
// bookkeeping order and changes on removals.
func (l *Ledger) EligibleHolders() []Holder {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	out := make([]Holder, len(l.holders))
	copy(out, l.holders)
	return out
}

func (l *Ledger) IsEligible(account types.Address) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	_, ok := l.holderIndex[account]
	return ok
}

// RestoreHolder re-adds a persisted eligible holder during boot.
func (l *Ledger) RestoreHolder(account types.Address, updatedAt int64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.firstSeen[account] != 0 {
		return
	}
	l.firstSeen[account] = updatedAt
	l.holderIndex[account] = len(l.holders)
	l.holders = append(l.holders, Holder{Address: account, UpdatedAt: updatedAt})
}
