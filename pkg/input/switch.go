package input

import "log/slog"

// Sampler reads the instantaneous state of one physical input.
// Implementations report true when the control is physically actuated;
// electrical polarity (active-low, pull-up) is handled inside the adapter,
// never by callers.
type Sampler interface {
	Pressed() (bool, error)
}

// EdgeFunc is invoked synchronously from within Update whenever the sampled
// level differs from the previous poll. pressed is the new level.
type EdgeFunc func(pressed bool)

// Switch wraps one physical input line and detects edges by polling.
// There is no time-based debounce filter; debouncing quality depends on the
// caller's polling interval. The controls on the appliance are latching
// toggle switches, so every flip shows up as exactly one edge.
type Switch struct {
	name    string
	sampler Sampler
	onEdge  EdgeFunc

	// prev is nil until the first successful Update. This suppresses the
	// spurious edge that a sentinel initial value would produce.
	prev *bool
	cur  bool
}

// NewSwitch creates a switch bound to a sampler. onEdge may be nil.
func NewSwitch(name string, sampler Sampler, onEdge EdgeFunc) *Switch {
	return &Switch{name: name, sampler: sampler, onEdge: onEdge}
}

// Name returns the switch's name, used for logging.
func (s *Switch) Name() string { return s.name }

// Pressed returns the most recently sampled level.
func (s *Switch) Pressed() bool { return s.cur }

// Update polls the line once. It returns true when an edge was detected,
// i.e. when a previous sample exists and the new sample differs from it.
// The edge callback runs synchronously on the polling goroutine before
// Update returns. A read error leaves the switch state untouched.
func (s *Switch) Update() bool {
	level, err := s.sampler.Pressed()
	if err != nil {
		slog.Debug("input read failed", "switch", s.name, "error", err)
		return false
	}

	// s.cur holds the previous tick's sample; s.prev == nil means there has
	// been no sample at all yet.
	edge := s.prev != nil && level != s.cur
	previous := s.cur
	if s.prev == nil {
		s.prev = &previous
	} else {
		*s.prev = previous
	}
	s.cur = level

	if edge && s.onEdge != nil {
		s.onEdge(level)
	}
	return edge
}
