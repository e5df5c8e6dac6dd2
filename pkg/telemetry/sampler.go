package telemetry

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"skyphase/pkg/sim"
	"skyphase/pkg/tracker"
)

// Config holds sampler timing settings.
type Config struct {
	// Interval is the poll interval used until a phase-aware consumer
	// adjusts it via SetInterval.
	Interval time.Duration
	// MinInterval floors the inter-cycle sleep regardless of how far the
	// cycle overran its budget.
	MinInterval time.Duration
	// PayloadInterval is the refresh timer for slow-changing weight data.
	PayloadInterval time.Duration
	// IdentityInterval is the refresh timer for static aircraft identity.
	IdentityInterval time.Duration
	// StopTimeout bounds how long Stop waits for the loop to join.
	StopTimeout time.Duration
}

// DefaultConfig returns the standard sampler timing.
func DefaultConfig() Config {
	return Config{
		Interval:         time.Second,
		MinInterval:      10 * time.Millisecond,
		PayloadInterval:  5 * time.Second,
		IdentityInterval: 30 * time.Second,
		StopTimeout:      2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.MinInterval <= 0 {
		c.MinInterval = d.MinInterval
	}
	if c.PayloadInterval <= 0 {
		c.PayloadInterval = d.PayloadInterval
	}
	if c.IdentityInterval <= 0 {
		c.IdentityInterval = d.IdentityInterval
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = d.StopTimeout
	}
	return c
}

// Sampler owns the provider session and runs the adaptive polling loop.
// It is the only code that calls into the provider; consumers read the
// latest snapshot through the non-blocking Snapshot accessor.
type Sampler struct {
	provider sim.Provider
	cfg      Config
	logger   *slog.Logger
	stats    *tracker.Tracker

	cur      atomic.Pointer[Snapshot]
	interval atomic.Int64 // nanoseconds

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	callbacks []func(Snapshot)
}

// NewSampler creates a sampler around a provider. stats may be nil.
func NewSampler(p sim.Provider, cfg Config, stats *tracker.Tracker) *Sampler {
	cfg = cfg.withDefaults()
	s := &Sampler{
		provider: p,
		cfg:      cfg,
		logger:   slog.Default().With("component", "sampler"),
		stats:    stats,
	}
	s.interval.Store(int64(cfg.Interval))
	return s
}

// Connect establishes the provider session. Idempotent if already connected.
func (s *Sampler) Connect() error {
	if err := s.provider.Connect(); err != nil {
		return fmt.Errorf("connect %s: %w", s.provider.Name(), err)
	}
	return nil
}

// Start spawns the sampling loop. No-op if already running; connects first
// if no session is established yet.
func (s *Sampler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.provider.Connected() {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true
	go s.loop(s.stopCh, s.doneCh)

	s.logger.Info("polling started", "provider", s.provider.Name(), "interval", s.Interval())
	return nil
}

// Stop signals cancellation, joins the loop with a bounded timeout and
// closes the provider session. Safe to call from any goroutine and when
// not running.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		_ = s.provider.Close()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(s.cfg.StopTimeout):
		s.logger.Warn("sampling loop did not stop in time", "timeout", s.cfg.StopTimeout)
	}

	if err := s.provider.Close(); err != nil {
		s.logger.Warn("provider close failed", "error", err)
	}
	s.logger.Info("polling stopped")
}

// Snapshot returns the most recently published snapshot. Never blocks and
// never touches the provider. Before the first cycle completes it returns
// the empty snapshot with SimRunning false.
func (s *Sampler) Snapshot() Snapshot {
	if p := s.cur.Load(); p != nil {
		return *p
	}
	return Empty()
}

// SetInterval adjusts the base poll interval for subsequent cycles. The
// caller maps the last published flight phase to an interval; the sampler
// itself stays phase-agnostic, accepting one cycle of lag instead of a
// circular dependency on the detector.
func (s *Sampler) SetInterval(d time.Duration) {
	if d < s.cfg.MinInterval {
		d = s.cfg.MinInterval
	}
	s.interval.Store(int64(d))
}

// Interval returns the current base poll interval.
func (s *Sampler) Interval() time.Duration {
	return time.Duration(s.interval.Load())
}

// OnSnapshot registers a callback invoked on the sampling goroutine after
// each publication. Callbacks must be fast; anything slow belongs on its
// own goroutine fed from these calls.
func (s *Sampler) OnSnapshot(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

func (s *Sampler) loop(stopCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	var prev Snapshot
	var lastPayload, lastIdentity time.Time

	for {
		start := time.Now()

		snap := s.cycle(prev, &lastPayload, &lastIdentity, start)
		s.publish(snap)
		prev = snap

		sleep := s.Interval() - time.Since(start)
		if sleep < s.cfg.MinInterval {
			sleep = s.cfg.MinInterval
		}
		select {
		case <-stopCh:
			return
		case <-time.After(sleep):
		}
	}
}

// cycle builds one snapshot. Fields whose read fails this cycle retain the
// previously published value; a single missing variable never aborts the
// cycle.
func (s *Sampler) cycle(prev Snapshot, lastPayload, lastIdentity *time.Time, now time.Time) Snapshot {
	snap := prev

	for _, name := range sim.CriticalVars {
		v, ok := s.provider.Read(name)
		s.count(name, ok)
		if ok {
			s.assign(&snap, name, v)
		}
	}

	if now.Sub(*lastPayload) >= s.cfg.PayloadInterval {
		*lastPayload = now
		for _, name := range sim.PayloadVars {
			v, ok := s.provider.Read(name)
			s.count(name, ok)
			if ok {
				s.assign(&snap, name, v)
			}
		}
	}

	if now.Sub(*lastIdentity) >= s.cfg.IdentityInterval {
		*lastIdentity = now
		for _, name := range sim.IdentityVars {
			v, ok := s.provider.Read(name)
			s.count(name, ok)
			if ok {
				s.assign(&snap, name, v)
			}
		}
	}

	snap.CapturedAt = now
	snap.SimRunning = s.provider.Connected() && IsRunning(prev, snap)
	if s.stats != nil {
		s.stats.Cycle()
	}
	return snap
}

// assign writes one normalized raw reading into the snapshot under
// construction.
func (s *Sampler) assign(snap *Snapshot, name string, v sim.Value) {
	var fixed bool
	switch name {
	case sim.VarLatitude:
		snap.Latitude = v.Num
	case sim.VarLongitude:
		snap.Longitude = v.Num
	case sim.VarAltitudeMSL:
		snap.AltitudeMSL = v.Num
	case sim.VarAltitudeAGL:
		snap.AltitudeAGL = v.Num
	case sim.VarVerticalSpeed:
		snap.VerticalSpeed, fixed = NormalizeVerticalSpeed(v.Num)
	case sim.VarPitch:
		snap.Pitch, fixed = NormalizeAngle(v.Num)
	case sim.VarBank:
		snap.Bank, fixed = NormalizeAngle(v.Num)
	case sim.VarHeadingTrue:
		h, f := NormalizeAngle(v.Num)
		snap.Heading, fixed = NormalizeHeading(h), f
	case sim.VarIndicatedAS:
		snap.IndicatedAirspeed = v.Num
	case sim.VarTrueAS:
		snap.TrueAirspeed = v.Num
	case sim.VarGroundSpeed:
		snap.GroundSpeed, fixed = NormalizeGroundSpeed(v.Num)
	case sim.VarGearDown:
		snap.GearDown = v.AsBool()
	case sim.VarFlapsPct:
		snap.FlapsPct = v.Num
	case sim.VarThrottlePct:
		snap.ThrottlePct = v.Num
	case sim.VarSpoilersPct:
		snap.SpoilersPct = v.Num
	case sim.VarParkingBrake:
		snap.ParkingBrake = v.AsBool()
	case sim.VarEngineOn:
		snap.EngineOn = v.AsBool()
	case sim.VarBeaconLight:
		snap.BeaconLight = v.AsBool()
	case sim.VarLandingLight:
		snap.LandingLight = v.AsBool()
	case sim.VarTaxiLight:
		snap.TaxiLight = v.AsBool()
	case sim.VarOnGround:
		snap.OnGround = v.AsBool()
	case sim.VarInParking:
		snap.InParking = v.AsBool()
	case sim.VarSimRate:
		snap.SimRate = v.Num
	case sim.VarAbsTime:
		snap.AbsoluteTime = v.Num
	case sim.VarStallWarning:
		snap.StallWarning = v.AsBool()
	case sim.VarOverspeed:
		snap.Overspeed = v.AsBool()
	case sim.VarGForce:
		snap.GForce = v.Num
	case sim.VarIcingPct:
		snap.IcingPct = v.Num
	case sim.VarPayloadWeight:
		snap.PayloadWeight = v.Num
	case sim.VarFuelTotal:
		snap.FuelTotal = v.Num
	case sim.VarAircraftTitle:
		snap.AircraftTitle = v.Str
	case sim.VarAircraftCategory:
		snap.AircraftCategory = v.Str
	}
	if fixed && s.stats != nil {
		s.stats.UnitFixup()
	}
}

func (s *Sampler) count(name string, ok bool) {
	if s.stats == nil {
		return
	}
	if ok {
		s.stats.Read(name)
	} else {
		s.stats.Failure(name)
	}
}

// publish atomically swaps in the new snapshot and notifies callbacks.
// A panicking callback is logged and isolated; it must not kill the loop.
func (s *Sampler) publish(snap Snapshot) {
	s.cur.Store(&snap)

	s.mu.Lock()
	cbs := s.callbacks
	s.mu.Unlock()

	for _, fn := range cbs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("snapshot callback panicked", "panic", r)
				}
			}()
			fn(snap)
		}()
	}
}
