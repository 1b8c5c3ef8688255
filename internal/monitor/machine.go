package monitor

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State of the monitoring state machine.
type State int

const (
	StateIdle State = iota
	StateMonitoring
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMonitoring:
		return "monitoring"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidTransition is returned for an illegal state-machine move.
	ErrInvalidTransition = errors.New("monitor: invalid state transition")

	// ErrSystemDestroyed is returned for any transition attempted after
	// self-destruct. Destroyed is terminal.
	ErrSystemDestroyed = errors.New("monitor: system destroyed")
)

// Machine is the single process-wide monitoring state machine. All
// transitions are serialized under one mutex, so concurrent commands
// resolve to exactly one winner.
type Machine struct {
	mu    sync.Mutex
	state State
	log   zerolog.Logger

	startHooks   []func()
	stopHooks    []func()
	destroyHooks []func()
}

// NewMachine creates a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{
		state: StateIdle,
		log:   log.With().Str("component", "monitor").Logger(),
	}
}

// OnStart registers a hook run after a successful Idle -> Monitoring
// transition. Hooks must be registered before the machine is shared.
func (m *Machine) OnStart(fn func()) {
	m.startHooks = append(m.startHooks, fn)
}

// OnStop registers a hook run after a successful Monitoring -> Idle
// transition.
func (m *Machine) OnStop(fn func()) {
	m.stopHooks = append(m.stopHooks, fn)
}

// OnDestroy registers a hook run exactly once when the machine enters
// Destroyed.
func (m *Machine) OnDestroy(fn func()) {
	m.destroyHooks = append(m.destroyHooks, fn)
}

// State returns the current state. Remains available after destroy.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start moves Idle -> Monitoring. A second concurrent Start observes
// Monitoring and fails with ErrInvalidTransition; side effects run once.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateDestroyed:
		return ErrSystemDestroyed
	case StateMonitoring:
		return ErrInvalidTransition
	}

	m.state = StateMonitoring
	m.log.Info().Msg("Monitoring started")
	for _, fn := range m.startHooks {
		fn()
	}
	return nil
}

// Stop moves Monitoring -> Idle.
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateDestroyed:
		return ErrSystemDestroyed
	case StateIdle:
		return ErrInvalidTransition
	}

	m.state = StateIdle
	m.log.Info().Msg("Monitoring stopped")
	for _, fn := range m.stopHooks {
		fn()
	}
	return nil
}

// SelfDestruct moves any non-Destroyed state to Destroyed and runs the
// destroy hooks. Irreversible; a second call fails with
// ErrSystemDestroyed and runs nothing.
func (m *Machine) SelfDestruct() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDestroyed {
		return ErrSystemDestroyed
	}

	m.state = StateDestroyed
	m.log.Warn().Msg("Self-destruct: system entering terminal state")
	for _, fn := range m.destroyHooks {
		fn()
	}
	return nil
}

// Require returns nil when the current state matches one of the given
// states, ErrSystemDestroyed when destroyed, ErrInvalidTransition
// otherwise. Used by the control surface to gate commands.
func (m *Machine) Require(states ...State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range states {
		if m.state == s {
			return nil
		}
	}
	if m.state == StateDestroyed {
		return ErrSystemDestroyed
	}
	return ErrInvalidTransition
}
