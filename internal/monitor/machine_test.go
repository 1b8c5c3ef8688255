package monitor

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStopTransitions(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateIdle, m.State())

	require.NoError(t, m.Start())
	assert.Equal(t, StateMonitoring, m.State())

	// Starting twice is an invalid transition, not a crash.
	assert.ErrorIs(t, m.Start(), ErrInvalidTransition)
	assert.Equal(t, StateMonitoring, m.State())

	require.NoError(t, m.Stop())
	assert.Equal(t, StateIdle, m.State())

	// Stop is not valid from Idle.
	assert.ErrorIs(t, m.Stop(), ErrInvalidTransition)
	assert.Equal(t, StateIdle, m.State())
}

func TestSelfDestructIsTerminal(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start())
	require.NoError(t, m.SelfDestruct())

	assert.Equal(t, StateDestroyed, m.State())
	assert.ErrorIs(t, m.Start(), ErrSystemDestroyed)
	assert.ErrorIs(t, m.Stop(), ErrSystemDestroyed)
	assert.ErrorIs(t, m.SelfDestruct(), ErrSystemDestroyed)

	// State query survives destruction.
	assert.Equal(t, StateDestroyed, m.State())
}

func TestDestroyHooksRunExactlyOnce(t *testing.T) {
	m := NewMachine()
	var calls int32
	m.OnDestroy(func() { atomic.AddInt32(&calls, 1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.SelfDestruct()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestConcurrentStartHasOneWinner(t *testing.T) {
	m := NewMachine()
	var started int32
	m.OnStart(func() { atomic.AddInt32(&started, 1) })

	var wg sync.WaitGroup
	var ok int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Start() == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&ok))
	assert.Equal(t, int32(1), atomic.LoadInt32(&started))
	assert.Equal(t, StateMonitoring, m.State())
}

func TestRequire(t *testing.T) {
	m := NewMachine()
	assert.NoError(t, m.Require(StateIdle))
	assert.ErrorIs(t, m.Require(StateMonitoring), ErrInvalidTransition)

	require.NoError(t, m.Start())
	assert.NoError(t, m.Require(StateIdle, StateMonitoring))

	require.NoError(t, m.SelfDestruct())
	assert.ErrorIs(t, m.Require(StateIdle, StateMonitoring), ErrSystemDestroyed)
}
