// Package mocksim provides a scriptable in-memory sim.Provider used by
// tests and for development without a running simulator.
package mocksim

import (
	"sync"

	"skyphase/pkg/sim"
)

// Provider holds a mutable variable table behind the sim.Provider interface.
// Tests drive it by setting values between sampling cycles.
type Provider struct {
	mu        sync.Mutex
	connected bool
	refuse    bool
	offline   bool
	values    map[string]sim.Value
	failing   map[string]bool
}

// New creates a provider seeded with a cold, parked aircraft.
func New() *Provider {
	p := &Provider{
		values:  make(map[string]sim.Value),
		failing: make(map[string]bool),
	}
	p.seedParked()
	return p
}

func (p *Provider) seedParked() {
	p.values[sim.VarLatitude] = sim.Num(51.6845)
	p.values[sim.VarLongitude] = sim.Num(14.4234)
	p.values[sim.VarAltitudeMSL] = sim.Num(285)
	p.values[sim.VarAltitudeAGL] = sim.Num(0)
	p.values[sim.VarHeadingTrue] = sim.Num(0)
	p.values[sim.VarOnGround] = sim.Bool(true)
	p.values[sim.VarInParking] = sim.Bool(true)
	p.values[sim.VarParkingBrake] = sim.Bool(true)
	p.values[sim.VarSimRate] = sim.Num(1)
	p.values[sim.VarAbsTime] = sim.Num(0)
	p.values[sim.VarAircraftTitle] = sim.Str("Cessna 172")
	p.values[sim.VarAircraftCategory] = sim.Str("ga")
}

func (p *Provider) Name() string { return "mock" }

// Connect succeeds unless RefuseConnect was set.
func (p *Provider) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refuse {
		return sim.ErrUnreachable
	}
	p.connected = true
	return nil
}

func (p *Provider) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

// Read returns the scripted value for a variable.
func (p *Provider) Read(name string) (sim.Value, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected || p.offline || p.failing[name] {
		return sim.Value{}, false
	}
	v, ok := p.values[name]
	return v, ok
}

// Set scripts a single variable.
func (p *Provider) Set(name string, v sim.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[name] = v
}

// SetNum scripts a numeric variable.
func (p *Provider) SetNum(name string, f float64) { p.Set(name, sim.Num(f)) }

// SetBool scripts a boolean variable.
func (p *Provider) SetBool(name string, b bool) { p.Set(name, sim.Bool(b)) }

// Apply scripts a batch of variables atomically.
func (p *Provider) Apply(vals map[string]sim.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, v := range vals {
		p.values[name] = v
	}
}

// AdvanceTime moves the simulated absolute clock forward.
func (p *Provider) AdvanceTime(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.values[sim.VarAbsTime]
	v.Num += seconds
	p.values[sim.VarAbsTime] = v
}

// FailVar makes a single variable fail to read, simulating a per-variable
// provider glitch.
func (p *Provider) FailVar(name string, fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[name] = fail
}

// SetOffline makes every read fail while keeping the session nominally open,
// simulating a simulator that stopped responding.
func (p *Provider) SetOffline(offline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offline = offline
}

// RefuseConnect makes subsequent Connect calls fail.
func (p *Provider) RefuseConnect(refuse bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refuse = refuse
}
