package roles

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/types"
)

// Role names a capability held by a set of accounts.
type Role string

// RoleOperator gates every administrative operation of the backend: ledger
// setters, lottery configuration, bridge whitelists, pausing.
const RoleOperator Role = "operator"

var ErrMissingRole = errors.New("caller does not hold the required role")

// Set maps roles to their member accounts. Membership is self-administering:
// only an existing member of a role can grant or revoke it.
type Set struct {
	mutex   sync.RWMutex
	members map[Role]map[types.Address]bool
}

// NewSet creates a role set with initialOwner as the first operator.
func NewSet(initialOwner types.Address) *Set {
	set := &Set{
		members: map[Role]map[types.Address]bool{},
	}
	set.members[RoleOperator] = map[types.Address]bool{initialOwner: true}
	return set
}

func (s *Set) Has(role Role, account types.Address) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.members[role][account]
}

// Require returns ErrMissingRole unless caller holds role. Gated entry points
// call it before touching any state.
func (s *Set) Require(role Role, caller types.Address) error {
	if !s.Has(role, caller) {
		return errors.Wrapf(ErrMissingRole, "role %s, caller %s", role, caller)
	}
	return nil
}

func (s *Set) Grant(caller types.Address, role Role, account types.Address) error {
	if err := s.Require(role, caller); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.members[role] == nil {
		s.members[role] = map[types.Address]bool{}
	}
	s.members[role][account] = true

	logger.Debug("roles: granted", zap.String("role", string(role)), zap.String("account", string(account)))
	return nil
}

func (s *Set) Revoke(caller types.Address, role Role, account types.Address) error {
	if err := s.Require(role, caller); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.members[role], account)

	logger.Debug("roles: revoked", zap.String("role", string(role)), zap.String("account", string(account)))
	return nil
}

// Members returns the accounts holding role, sorted for deterministic output.
func (s *Set) Members(role Role) []types.Address {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]types.Address, 0, len(s.members[role]))
	for account := range s.members[role] {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Roles returns every role with at least one member.
func (s *Set) Roles() []Role {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Role, 0, len(s.members))
	for role, members := range s.members {
		if len(members) > 0 {
			out = append(out, role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Restore re-adds a membership without authorization checks. Only the storage
// restore path uses it.
func (s *Set) Restore(role Role, account types.Address) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.members[role] == nil {
		s.members[role] = map[types.Address]bool{}
	}
	s.members[role][account] = true
}
