// Package xplane implements sim.Provider over the X-Plane UDP RREF protocol.
package xplane

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"net"
	"sync"
	"time"

	"skyphase/pkg/sim"
)

// datarefs maps canonical variable names to X-Plane dataref paths, in
// subscription index order. String-valued identity variables have no RREF
// equivalent and are not listed; Read reports them unavailable.
var datarefs = []struct {
	name string
	path string
}{
	{sim.VarLatitude, "sim/flightmodel/position/latitude"},
	{sim.VarLongitude, "sim/flightmodel/position/longitude"},
	{sim.VarAltitudeMSL, "sim/flightmodel/position/elevation"}, // meters
	{sim.VarAltitudeAGL, "sim/flightmodel/position/y_agl"},     // meters
	{sim.VarVerticalSpeed, "sim/flightmodel/position/vh_ind_fpm"},
	{sim.VarPitch, "sim/flightmodel/position/theta"},
	{sim.VarBank, "sim/flightmodel/position/phi"},
	{sim.VarHeadingTrue, "sim/flightmodel/position/psi"},
	{sim.VarIndicatedAS, "sim/flightmodel/position/indicated_airspeed"},
	{sim.VarTrueAS, "sim/flightmodel/position/true_airspeed"}, // m/s
	{sim.VarGroundSpeed, "sim/flightmodel/position/groundspeed"}, // m/s
	{sim.VarGearDown, "sim/cockpit/switches/gear_handle_status"},
	{sim.VarFlapsPct, "sim/flightmodel/controls/flaprat"},
	{sim.VarThrottlePct, "sim/cockpit2/engine/actuators/throttle_ratio_all"},
	{sim.VarSpoilersPct, "sim/flightmodel/controls/sbrkrat"},
	{sim.VarParkingBrake, "sim/flightmodel/controls/parkbrake"},
	{sim.VarEngineOn, "sim/flightmodel/engine/ENGN_running"},
	{sim.VarBeaconLight, "sim/cockpit/electrical/beacon_lights_on"},
	{sim.VarLandingLight, "sim/cockpit/electrical/landing_lights_on"},
	{sim.VarTaxiLight, "sim/cockpit/electrical/taxi_light_on"},
	{sim.VarOnGround, "sim/flightmodel/failures/onground_any"},
	{sim.VarSimRate, "sim/time/sim_speed"},
	{sim.VarAbsTime, "sim/time/total_flight_time_sec"},
	{sim.VarStallWarning, "sim/cockpit2/annunciators/stall_warning"},
	{sim.VarOverspeed, "sim/cockpit2/annunciators/overspeed"},
	{sim.VarGForce, "sim/flightmodel/forces/g_nrml"},
	{sim.VarIcingPct, "sim/flightmodel/failures/frm_ice"},
	{sim.VarPayloadWeight, "sim/flightmodel/weight/m_fixed"},
	{sim.VarFuelTotal, "sim/flightmodel/weight/m_fuel_total"},
}

// staleAfter is how long a subscribed value stays readable without a fresh
// RREF frame. X-Plane pauses stop the stream entirely.
const staleAfter = 3 * time.Second

// Adapter is a sim.Provider speaking the X-Plane RREF UDP protocol.
type Adapter struct {
	host string
	port int

	mu       sync.Mutex
	conn     *net.UDPConn
	stop     chan struct{}
	values   map[string]float64
	received map[string]time.Time
	logger   *slog.Logger
}

// New creates an adapter for an X-Plane instance at host:port.
func New(host string, port int) *Adapter {
	return &Adapter{
		host:     host,
		port:     port,
		values:   make(map[string]float64),
		received: make(map[string]time.Time),
		logger:   slog.Default().With("component", "xplane"),
	}
}

func (a *Adapter) Name() string { return "X-Plane" }

// Connect dials the simulator and subscribes all datarefs at 10Hz.
// Idempotent when already connected.
func (a *Adapter) Connect() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return nil
	}

	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", a.host, a.port))
	if err != nil {
		return fmt.Errorf("resolve addr: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w: %v", addr, sim.ErrUnreachable, err)
	}
	a.conn = conn

	for i, d := range datarefs {
		if err := a.subscribeRREF(i, 10, d.path); err != nil {
			conn.Close()
			a.conn = nil
			return fmt.Errorf("subscribe %s: %w", d.path, err)
		}
	}

	a.stop = make(chan struct{})
	go a.listenLoop(a.stop, conn)

	a.logger.Info("X-Plane UDP connected", "addr", addr.String())
	return nil
}

// Connected reports whether a session is established.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn != nil
}

// Close unsubscribes and tears down the session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
	if a.conn != nil {
		for i, d := range datarefs {
			_ = a.subscribeRREF(i, 0, d.path) // freq 0 unsubscribes
		}
		a.conn.Close()
		a.conn = nil
	}
	return nil
}

// Read returns the last received value for a canonical variable. A value
// that has not arrived recently reads as unavailable, so a paused or quit
// simulator degrades to per-variable read failures rather than stale data.
func (a *Adapter) Read(name string) (sim.Value, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return sim.Value{}, false
	}
	at, ok := a.received[name]
	if !ok || time.Since(at) > staleAfter {
		return sim.Value{}, false
	}
	return sim.Num(a.values[name]), true
}

// subscribeRREF sends an RREF subscription packet.
// Layout: "RREF\0" + freq(4) + index(4) + dataref(400, null-padded).
func (a *Adapter) subscribeRREF(index, freq int, dataref string) error {
	buf := make([]byte, 413)
	copy(buf[0:4], "RREF")
	binary.LittleEndian.PutUint32(buf[5:9], uint32(freq))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(index))
	copy(buf[13:], dataref)

	_, err := a.conn.Write(buf)
	return err
}

// listenLoop reads RREF response frames from the connected socket. The
// simulator replies to the source port of our subscription packets, so the
// dialed conn receives them directly.
func (a *Adapter) listenLoop(stop chan struct{}, conn *net.UDPConn) {
	buf := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, err := conn.Read(buf)
		if err != nil {
			continue
		}
		a.handleFrame(buf[:n])
	}
}

// handleFrame parses one RREF response: header(5) + entries of (index:4 + value:4).
func (a *Adapter) handleFrame(frame []byte) {
	if len(frame) < 5 || string(frame[0:4]) != "RREF" {
		return
	}

	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()

	offset := 5
	for offset+8 <= len(frame) {
		idx := int(binary.LittleEndian.Uint32(frame[offset : offset+4]))
		val := math.Float32frombits(binary.LittleEndian.Uint32(frame[offset+4 : offset+8]))
		offset += 8

		if idx < 0 || idx >= len(datarefs) {
			continue
		}
		name := datarefs[idx].name
		a.values[name] = convert(name, float64(val))
		a.received[name] = now
	}
}

// convert adjusts dataref-native units into the raw contract the sampler's
// normalizer expects: altitudes in feet, ground speed and vertical speed in
// ft/s, true airspeed in knots. X-Plane reports elevations in meters,
// speeds in m/s and vertical speed in ft/min.
func convert(name string, v float64) float64 {
	switch name {
	case sim.VarAltitudeMSL, sim.VarAltitudeAGL:
		return v * 3.28084 // meters to feet
	case sim.VarGroundSpeed:
		return v * 3.28084 // m/s to ft/s
	case sim.VarTrueAS:
		return v * 1.94384 // m/s to knots
	case sim.VarVerticalSpeed:
		return v / 60 // ft/min to ft/s
	case sim.VarFlapsPct, sim.VarSpoilersPct, sim.VarThrottlePct:
		return v * 100 // ratio to percent
	default:
		return v
	}
}
