package mocksim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyphase/pkg/sim"
)

func TestConnectLifecycle(t *testing.T) {
	p := New()

	_, ok := p.Read(sim.VarLatitude)
	assert.False(t, ok, "reads must fail before Connect")

	require.NoError(t, p.Connect())
	assert.True(t, p.Connected())

	v, ok := p.Read(sim.VarLatitude)
	require.True(t, ok)
	assert.InDelta(t, 51.6845, v.Num, 0.0001)

	require.NoError(t, p.Close())
	assert.False(t, p.Connected())
}

func TestRefuseConnect(t *testing.T) {
	p := New()
	p.RefuseConnect(true)

	err := p.Connect()
	assert.True(t, errors.Is(err, sim.ErrUnreachable))
}

func TestFailVar(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())

	p.FailVar(sim.VarAltitudeMSL, true)
	_, ok := p.Read(sim.VarAltitudeMSL)
	assert.False(t, ok)

	// Other variables unaffected
	_, ok = p.Read(sim.VarLongitude)
	assert.True(t, ok)

	p.FailVar(sim.VarAltitudeMSL, false)
	_, ok = p.Read(sim.VarAltitudeMSL)
	assert.True(t, ok)
}

func TestOffline(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())

	p.SetOffline(true)
	_, ok := p.Read(sim.VarLatitude)
	assert.False(t, ok)
	assert.True(t, p.Connected(), "offline does not drop the session")
}

func TestAdvanceTime(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())

	p.AdvanceTime(1.5)
	p.AdvanceTime(0.5)
	v, ok := p.Read(sim.VarAbsTime)
	require.True(t, ok)
	assert.Equal(t, 2.0, v.Num)
}
