package client

import (
	"sync"
	"time"
)

type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Photo      string    `json:"photo"`
	Bio        string    `json:"bio"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == "admin"
}

// Snapshot is a copy of the client state at one instant.
type Snapshot struct {
	User     *User
	AllUsers []User
	Loading  bool
}

type state struct {
	mu       sync.Mutex
	user     *User
	allUsers []User
	inflight int
}

func (s *state) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *state) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *state) setUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

func (s *state) setAllUsers(all []User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allUsers = append([]User(nil), all...)
}

func (s *state) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.allUsers = nil
}

func (s *state) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		AllUsers: append([]User(nil), s.allUsers...),
		Loading:  s.inflight > 0,
	}
	if s.user != nil {
		cp := *s.user
		snap.User = &cp
	}
	return snap
}

func (c *Client) State() Snapshot {
	return c.state.snapshot()
}
