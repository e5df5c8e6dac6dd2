package phase

import (
	"log/slog"
	"sync"
	"time"

	"skyphase/pkg/geo"
	"skyphase/pkg/telemetry"
)

const (
	// MinPhaseDuration is the hysteresis dwell: a phase must be held this
	// long before an ordinary transition is accepted.
	MinPhaseDuration = 5 * time.Second
	// MinCruiseDuration is the longer dwell for leaving cruise, where
	// autopilot vertical-speed noise would otherwise cause oscillation.
	MinCruiseDuration = 30 * time.Second

	// takeoffThrottlePct is the throttle setting that marks a takeoff roll
	// regardless of speed.
	takeoffThrottlePct = 80.0
	// spoilerRetractPct below this, with the rollout slowed, counts as
	// spoilers stowed after landing.
	spoilerRetractPct = 10.0
	// rolloutExitSpeed is the ground speed (kts) under which retracting
	// spoilers end the landing roll.
	rolloutExitSpeed = 50.0

	// refMaxDistance and refHeadingTol define "near the runway": within
	// this great-circle distance of a registered reference point and
	// aligned with (or reciprocal to) its heading.
	refMaxDistance  = 8000.0 // meters
	refHeadingTol   = 20.0   // degrees
	vsBufferSamples = 5
)

// Ref is a departure or arrival runway reference point used for
// ground-phase disambiguation.
type Ref struct {
	Point   geo.Point
	Heading float64
}

// vsBuffer is the fixed-capacity rolling window of raw vertical-speed
// samples. Mean smoothing kicks in once two samples are present; raw
// spikes never drive a transition directly.
type vsBuffer struct {
	samples [vsBufferSamples]float64
	n       int
	idx     int
}

func (b *vsBuffer) push(v float64) {
	b.samples[b.idx] = v
	b.idx = (b.idx + 1) % vsBufferSamples
	if b.n < vsBufferSamples {
		b.n++
	}
}

// mean returns the buffer average, or the raw fallback while the buffer
// holds fewer than two samples.
func (b *vsBuffer) mean(raw float64) float64 {
	if b.n < 2 {
		return raw
	}
	var sum float64
	for i := 0; i < b.n; i++ {
		sum += b.samples[i]
	}
	return sum / float64(b.n)
}

func (b *vsBuffer) reset() {
	b.n = 0
	b.idx = 0
}

// Detector is the flight-phase state machine. Process must be driven from a
// single goroutine (the sampler callback or a consumer loop, never both);
// the configuration setters are safe from any goroutine.
type Detector struct {
	profiles *ProfileTable
	bus      *Bus
	history  *History
	logger   *slog.Logger

	cfgMu    sync.Mutex
	profile  AircraftProfile
	category string
	depRef   *Ref
	arrRef   *Ref

	current       Phase
	previous      Phase
	enteredAt     time.Time
	vsBuf         vsBuffer
	flightStarted bool
	hasLanded     bool
	wasRunning    bool

	curMu sync.RWMutex // guards current/previous for cross-goroutine reads
}

// NewDetector creates a detector in the Unknown phase using the default
// aircraft profile.
func NewDetector(profiles *ProfileTable, bus *Bus) *Detector {
	if bus == nil {
		bus = NewBus()
	}
	return &Detector{
		profiles: profiles,
		bus:      bus,
		history:  &History{},
		logger:   slog.Default().With("component", "detector"),
		profile:  profiles.Get(DefaultCategory),
		category: DefaultCategory,
		current:  Unknown,
		previous: Unknown,
	}
}

// Bus returns the transition bus for subscriber registration.
func (d *Detector) Bus() *Bus { return d.bus }

// Current returns the current phase.
func (d *Detector) Current() Phase {
	d.curMu.RLock()
	defer d.curMu.RUnlock()
	return d.current
}

// Previous returns the phase before the current one.
func (d *Detector) Previous() Phase {
	d.curMu.RLock()
	defer d.curMu.RUnlock()
	return d.previous
}

// History returns the recorded transitions, oldest first.
func (d *Detector) History() []Transition {
	return d.history.All()
}

// SetCategory swaps the active aircraft profile. Phase state is preserved;
// an unrecognized category falls back to the default profile.
func (d *Detector) SetCategory(category string) {
	d.cfgMu.Lock()
	defer d.cfgMu.Unlock()
	if category == d.category {
		return
	}
	d.profile = d.profiles.Get(category)
	d.category = category
	d.logger.Info("aircraft profile swapped", "category", category)
}

// Category returns the active aircraft category.
func (d *Detector) Category() string {
	d.cfgMu.Lock()
	defer d.cfgMu.Unlock()
	return d.category
}

// SetDeparture registers the departure runway reference point.
func (d *Detector) SetDeparture(lat, lon, heading float64) {
	d.cfgMu.Lock()
	defer d.cfgMu.Unlock()
	d.depRef = &Ref{Point: geo.Point{Lat: lat, Lon: lon}, Heading: heading}
}

// SetArrival registers the arrival runway reference point.
func (d *Detector) SetArrival(lat, lon, heading float64) {
	d.cfgMu.Lock()
	defer d.cfgMu.Unlock()
	d.arrRef = &Ref{Point: geo.Point{Lat: lat, Lon: lon}, Heading: heading}
}

// Reset clears all session state for a new flight. The detector re-enters
// Unknown and re-derives a phase from the next snapshot.
func (d *Detector) Reset() {
	d.curMu.Lock()
	d.current = Unknown
	d.previous = Unknown
	d.curMu.Unlock()

	d.enteredAt = time.Time{}
	d.vsBuf.reset()
	d.flightStarted = false
	d.hasLanded = false
	d.wasRunning = false
}

// Process consumes one snapshot and advances the state machine. All timing
// (dwell, transition timestamps) derives from the snapshot's capture
// timestamp, so replaying the same stream reproduces the same transition
// log.
func (d *Detector) Process(s telemetry.Snapshot) {
	if s.AircraftCategory != "" {
		d.SetCategory(s.AircraftCategory)
	}

	if !s.SimRunning {
		// Pause or menu: force Unknown and freeze. The buffer is not fed
		// while frozen so stale samples never color the resume decision.
		if d.Current() != Unknown {
			d.transition(Unknown, s, true)
		}
		d.vsBuf.reset()
		d.wasRunning = false
		return
	}

	resumed := !d.wasRunning
	d.wasRunning = true

	d.vsBuf.push(s.VerticalSpeed)
	vs := d.vsBuf.mean(s.VerticalSpeed)

	if resumed || d.Current() == Unknown {
		// Mandatory re-detection: a paused session can resume in a
		// radically different state than it left. Bypass hysteresis and
		// re-derive a best guess exactly as at session start.
		if guess := d.redetect(s, vs); guess != d.Current() {
			d.transition(guess, s, true)
		}
		return
	}

	if s.OnGround {
		d.processGround(s, vs)
	} else {
		d.processAir(s, vs)
	}
}

// redetect derives a best-guess phase from a single snapshot, used at
// session start and on pause-resume.
func (d *Detector) redetect(s telemetry.Snapshot, vs float64) Phase {
	p := d.activeProfile()

	if !s.OnGround {
		d.flightStarted = true
		switch {
		case vs > p.ClimbVS:
			if s.AltitudeAGL < p.InitialClimbAGL {
				return InitialClimb
			}
			return Climb
		case vs < p.DescentVS:
			if s.AltitudeAGL < p.ApproachAGL {
				return Approach
			}
			return Descent
		default:
			return Cruise
		}
	}

	switch {
	case s.GroundSpeed > p.TakeoffRollSpeed:
		if d.flightStarted {
			return LandingRoll
		}
		return TakeoffRoll
	case s.GroundSpeed > p.TaxiSpeedMin:
		if d.flightStarted {
			return TaxiIn
		}
		return TaxiOut
	case !s.EngineOn:
		if d.flightStarted {
			return Parked
		}
		return Preflight
	case s.ParkingBrake:
		// Engine running with the brake set is Parked, not EngineStart.
		return Parked
	default:
		if d.flightStarted {
			return TaxiIn
		}
		return TaxiOut
	}
}

func (d *Detector) processGround(s telemetry.Snapshot, vs float64) {
	// Touchdown: loss of airborne state forces LandingRoll immediately and
	// unconditionally.
	if d.Current().Airborne() {
		d.hasLanded = true
		d.transition(LandingRoll, s, true)
		return
	}

	p := d.activeProfile()
	stationary := s.GroundSpeed < p.TaxiSpeedMin

	switch d.Current() {
	case Parked:
		switch {
		case s.EngineOn && !s.ParkingBrake && s.GroundSpeed > p.TaxiSpeedMin:
			d.tryTaxiOrTakeoff(s, p)
		// Beacon on with the engine still off means the crew is preparing.
		case !s.EngineOn && !d.flightStarted && (!s.ParkingBrake || s.BeaconLight):
			d.transition(Preflight, s, false)
		}

	case Preflight:
		if s.EngineOn {
			if s.ParkingBrake {
				d.transition(Parked, s, false)
			} else {
				d.transition(EngineStart, s, false)
			}
		}

	case EngineStart:
		switch {
		case s.ParkingBrake && stationary:
			d.transition(Parked, s, false)
		case s.GroundSpeed > p.TaxiSpeedMin:
			d.tryTaxiOrTakeoff(s, p)
		}

	case TaxiOut, Holding:
		// Takeoff roll is a force-transition on either high throttle or
		// profile speed.
		if d.takeoffRollDetected(s, p) {
			d.transition(TakeoffRoll, s, true)
			return
		}
		if d.Current() == TaxiOut {
			switch {
			case stationary && !s.EngineOn:
				d.transition(Preflight, s, false)
			case stationary && s.ParkingBrake:
				d.transition(Parked, s, false)
			case stationary && d.nearAnyRef(s):
				d.transition(Holding, s, false)
			}
		} else if !stationary && !d.nearAnyRef(s) {
			d.transition(TaxiOut, s, false)
		}

	case TakeoffRoll:
		// Rotation needs pitch above the profile threshold and airspeed at
		// 90% of Vr; both are unambiguous physical events.
		if s.Pitch > p.RotationPitch && s.IndicatedAirspeed >= 0.9*p.RotationSpeed {
			d.transition(Rotation, s, true)
			return
		}
		// Rejected takeoff: back below taxi speed with the power pulled.
		if s.GroundSpeed < p.TaxiSpeedMax && s.ThrottlePct < takeoffThrottlePct/2 {
			d.transition(TaxiOut, s, false)
		}

	case Rotation:
		// Liftoff arrives via processAir. Falling well below Vr on the
		// ground means the rotation was aborted.
		if s.IndicatedAirspeed < 0.8*p.RotationSpeed {
			d.transition(TakeoffRoll, s, false)
		}

	case LandingRoll:
		// Touch-and-go: power back up forces another takeoff roll.
		if s.ThrottlePct > takeoffThrottlePct {
			d.transition(TakeoffRoll, s, true)
			return
		}
		if s.GroundSpeed < p.TaxiSpeedMax ||
			(s.SpoilersPct < spoilerRetractPct && s.GroundSpeed < rolloutExitSpeed) {
			d.transition(TaxiIn, s, false)
		}

	case TaxiIn:
		switch {
		case !s.EngineOn:
			d.transition(Shutdown, s, false)
		case stationary && s.ParkingBrake:
			d.transition(Parked, s, false)
		}

	case Shutdown:
		if !s.EngineOn && s.ParkingBrake {
			d.transition(Parked, s, false)
		}

	default:
		// An air phase on the ground is handled above; anything else
		// re-derives.
		if guess := d.redetect(s, vs); guess != d.Current() {
			d.transition(guess, s, false)
		}
	}
}

func (d *Detector) processAir(s telemetry.Snapshot, vs float64) {
	// Liftoff forces InitialClimb regardless of dwell time.
	if d.Current().OnGroundPhase() {
		d.flightStarted = true
		d.transition(InitialClimb, s, true)
		return
	}

	p := d.activeProfile()

	switch d.Current() {
	case InitialClimb:
		switch {
		case s.AltitudeAGL > p.InitialClimbAGL && vs > p.ClimbVS:
			d.transition(Climb, s, false)
		case vs < p.DescentVS:
			d.transition(Descent, s, false)
		case absF(vs) < p.CruiseVSBand:
			// Early level-off: pattern work never reaches a sustained climb.
			d.transition(Cruise, s, false)
		}

	case Climb:
		switch {
		case vs < p.DescentVS:
			d.transition(Descent, s, false)
		case absF(vs) < p.CruiseVSBand:
			d.transition(Cruise, s, false)
		}

	case Cruise:
		// Leaving cruise honors the longer dwell via minDwell.
		switch {
		case vs > p.ClimbVS:
			d.transition(Climb, s, false)
		case vs < p.DescentVS:
			if s.AltitudeAGL < p.ApproachAGL {
				d.transition(Approach, s, false)
			} else {
				d.transition(Descent, s, false)
			}
		}

	case Descent:
		switch {
		case vs > p.ClimbVS:
			d.transition(Climb, s, false)
		// Gear down is an approach commitment well before the altitude band.
		case s.AltitudeAGL < p.ApproachAGL ||
			(s.GearDown && s.AltitudeAGL < 1.5*p.ApproachAGL):
			d.transition(Approach, s, false)
		case absF(vs) < p.CruiseVSBand:
			d.transition(Cruise, s, false)
		}

	case Approach:
		// Go-around bypasses hysteresis.
		if vs > p.ClimbVS {
			d.transition(Climb, s, true)
			return
		}
		if s.AltitudeAGL < p.ShortFinalAGL {
			d.transition(ShortFinal, s, false)
		}

	case ShortFinal:
		if vs > p.ClimbVS {
			d.transition(Climb, s, true)
			return
		}
		if s.AltitudeAGL < p.FlareAGL {
			d.transition(Flare, s, false)
		}

	case Flare:
		if vs > p.ClimbVS {
			d.transition(Climb, s, true)
		}
		// Touchdown arrives via processGround.
	}
}

// tryTaxiOrTakeoff picks between starting a taxi and a straight-to-takeoff
// roll for phases that precede taxiing.
func (d *Detector) tryTaxiOrTakeoff(s telemetry.Snapshot, p AircraftProfile) {
	if d.takeoffRollDetected(s, p) {
		d.transition(TakeoffRoll, s, true)
		return
	}
	d.transition(TaxiOut, s, false)
}

// takeoffRollDetected reports the force-transition condition for a takeoff
// roll: throttle beyond the takeoff setting, or airspeed/ground speed past
// the profile threshold.
func (d *Detector) takeoffRollDetected(s telemetry.Snapshot, p AircraftProfile) bool {
	return s.ThrottlePct > takeoffThrottlePct ||
		s.IndicatedAirspeed > p.TakeoffRollSpeed ||
		s.GroundSpeed > p.TakeoffRollSpeed
}

// nearAnyRef reports whether the aircraft is near the departure or arrival
// runway; holding short can happen at either end of a session.
func (d *Detector) nearAnyRef(s telemetry.Snapshot) bool {
	d.cfgMu.Lock()
	dep, arr := d.depRef, d.arrRef
	d.cfgMu.Unlock()
	return nearRef(s, dep) || nearRef(s, arr)
}

// nearRef reports whether the aircraft is close to a reference point and
// aligned with its runway heading or the reciprocal.
func nearRef(s telemetry.Snapshot, ref *Ref) bool {
	if ref == nil {
		return false
	}
	pos := geo.Point{Lat: s.Latitude, Lon: s.Longitude}
	if geo.Distance(pos, ref.Point) > refMaxDistance {
		return false
	}
	return geo.HeadingAligned(s.Heading, ref.Heading, refHeadingTol)
}

func (d *Detector) activeProfile() AircraftProfile {
	d.cfgMu.Lock()
	defer d.cfgMu.Unlock()
	return d.profile
}

// minDwell returns the hysteresis dwell required to leave a phase.
func minDwell(p Phase) time.Duration {
	if p == Cruise {
		return MinCruiseDuration
	}
	return MinPhaseDuration
}

// transition applies a phase change. Non-forced transitions are rejected
// until the current phase has been held for its minimum dwell. Accepted
// transitions are recorded and published synchronously.
func (d *Detector) transition(to Phase, s telemetry.Snapshot, force bool) bool {
	cur := d.Current()
	if to == cur {
		return false
	}
	if !force && !d.enteredAt.IsZero() && s.CapturedAt.Sub(d.enteredAt) < minDwell(cur) {
		return false
	}

	d.curMu.Lock()
	d.previous = cur
	d.current = to
	d.curMu.Unlock()
	d.enteredAt = s.CapturedAt

	tr := Transition{
		From:              cur,
		To:                to,
		At:                s.CapturedAt,
		AltitudeMSL:       s.AltitudeMSL,
		IndicatedAirspeed: s.IndicatedAirspeed,
		VerticalSpeed:     s.VerticalSpeed,
	}
	d.history.Append(tr)
	d.logger.Info("phase transition", "from", cur, "to", to,
		"alt", s.AltitudeMSL, "ias", s.IndicatedAirspeed, "vs", s.VerticalSpeed)
	d.bus.Publish(tr)
	return true
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
