package session

import (
	"errors"
	"sync"

	"github.com/sportx-platform/access-gateway/internal/policy"
)

// ErrSessionInvalid reports that the backend declared the session dead
// during revalidation.
var ErrSessionInvalid = errors.New("session invalid")

// User is the client-side view of the authenticated account.
type User struct {
	ID          string
	Role        policy.Role
	Permissions policy.PermissionSet
}

// State is the auth context's full state. Every mutation replaces the whole
// struct, so a reader never observes a half-updated combination.
type State struct {
	User      *User
	Loading   bool
	Validated bool
}

// Authenticated reports whether a settled state carries a user.
func (s State) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// AuthContext is the tab-scoped singleton holding the known user, the
// loading flag, and the session-validated flag. It is mutated only by
// bootstrap, revalidation, and logout/401 teardown.
type AuthContext struct {
	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
}

// NewAuthContext starts in the loading state.
func NewAuthContext() *AuthContext {
	return &AuthContext{
		state: State{Loading: true},
		subs:  make(map[int]chan State),
	}
}

// Snapshot returns the current state.
func (a *AuthContext) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Bootstrap seeds the context optimistically from locally cached
// credentials. The session is not yet validated; a background revalidation
// confirms or clears it.
func (a *AuthContext) Bootstrap(cached *User) {
	a.replace(State{User: cached, Loading: false, Validated: false})
}

// SetValidated installs the revalidated user and marks the session confirmed.
func (a *AuthContext) SetValidated(user *User) {
	a.replace(State{User: user, Loading: false, Validated: true})
}

// Clear tears the context down on logout or on a 401 from revalidation.
func (a *AuthContext) Clear() {
	a.replace(State{Loading: false})
}

// Subscribe returns a channel that receives each settled state after a
// mutation, plus a cancel function. The channel holds only the latest state;
// slow readers skip intermediates rather than blocking writers.
func (a *AuthContext) Subscribe() (<-chan State, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan State, 1)
	a.subs[id] = ch

	cancel := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
	return ch, cancel
}

func (a *AuthContext) replace(next State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = next
	for _, ch := range a.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}
