package input

import (
	"errors"
	"testing"
)

// scriptedSampler replays a fixed sequence of levels.
type scriptedSampler struct {
	levels []bool
	errs   []error
	i      int
}

func (s *scriptedSampler) Pressed() (bool, error) {
	level := s.levels[s.i]
	var err error
	if s.errs != nil {
		err = s.errs[s.i]
	}
	s.i++
	return level, err
}

func TestSwitchEdgeDetection(t *testing.T) {
	cases := []struct {
		name   string
		levels []bool
		edges  []bool
	}{
		{
			name:   "steady low",
			levels: []bool{false, false, false},
			edges:  []bool{false, false, false},
		},
		{
			name:   "press and release",
			levels: []bool{false, true, true, false},
			edges:  []bool{false, true, false, true},
		},
		{
			name:   "first sample high never fires",
			levels: []bool{true, true},
			edges:  []bool{false, false},
		},
		{
			name:   "alternating fires every tick after the first",
			levels: []bool{true, false, true, false},
			edges:  []bool{false, true, true, true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sw := NewSwitch("test", &scriptedSampler{levels: tc.levels}, nil)
			for i, want := range tc.edges {
				got := sw.Update()
				if got != want {
					t.Errorf("tick %d: edge = %v, want %v", i, got, want)
				}
				if sw.Pressed() != tc.levels[i] {
					t.Errorf("tick %d: Pressed() = %v, want %v", i, sw.Pressed(), tc.levels[i])
				}
			}
		})
	}
}

func TestSwitchCallbackRunsSynchronously(t *testing.T) {
	var fired []bool
	sw := NewSwitch("test", &scriptedSampler{levels: []bool{false, true, false}}, func(pressed bool) {
		fired = append(fired, pressed)
	})

	sw.Update()
	if len(fired) != 0 {
		t.Fatalf("callback fired on first sample: %v", fired)
	}
	sw.Update()
	if len(fired) != 1 || !fired[0] {
		t.Fatalf("expected one press edge, got %v", fired)
	}
	sw.Update()
	if len(fired) != 2 || fired[1] {
		t.Fatalf("expected a release edge, got %v", fired)
	}
}

func TestSwitchReadErrorKeepsState(t *testing.T) {
	s := &scriptedSampler{
		levels: []bool{true, false, true},
		errs:   []error{nil, errors.New("bus error"), nil},
	}
	sw := NewSwitch("test", s, nil)

	sw.Update()
	if sw.Update() {
		t.Error("edge reported on a failed read")
	}
	if !sw.Pressed() {
		t.Error("failed read changed the sampled state")
	}
	if sw.Update() {
		t.Error("edge reported after error when level is unchanged")
	}
}
