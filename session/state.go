package session

import (
	"github.com/jrsteele09/acservice-dashboard/users"
)

// State is the authoritative client-side authentication state.
// IsAuthenticated is always User != nil.
type State struct {
	User            *users.User
	IsAuthenticated bool
}

// mutation derives the next state from the current one
type mutation func(State) State

func authenticated(u *users.User) mutation {
	return func(State) State {
		return State{User: u, IsAuthenticated: u != nil}
	}
}

func signedOut() mutation {
	return func(State) State {
		return State{}
	}
}

// clone copies the user so callers cannot mutate the stored state
func (s State) clone() State {
	if s.User == nil {
		return State{}
	}
	u := *s.User
	return State{User: &u, IsAuthenticated: true}
}
