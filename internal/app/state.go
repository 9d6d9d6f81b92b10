// Package app holds process-wide state.
//
// A State must be initialized with Init before use and released with
// Teardown when the process is done with it.
package app

import (
	"errors"
	"sync"
)

var ErrNotInitialized = errors.New("state not initialized")

// State counts users registered during the lifetime of the process
type State struct {
	mu          sync.Mutex
	counter     int
	initialized bool
}

// Init marks the state ready. Calling it again keeps the current counter.
func (s *State) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	s.counter = 0
	s.initialized = true
}

// Teardown resets the state to its zero value
func (s *State) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = 0
	s.initialized = false
}

func (s *State) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Next increments the counter and returns the new value
func (s *State) Next() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	s.counter++
	return s.counter, nil
}

func (s *State) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}
