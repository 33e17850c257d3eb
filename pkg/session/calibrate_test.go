package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wachiwi/knipskiste/pkg/capture"
)

type tickingSource struct {
	interval time.Duration
	err      error
}

func (s *tickingSource) ReadFrame(ctx context.Context) (*capture.Frame, error) {
	if s.err != nil {
		time.Sleep(s.interval)
		return nil, s.err
	}
	time.Sleep(s.interval)
	return testFrame(), nil
}

func TestCalibrateRate(t *testing.T) {
	src := &tickingSource{interval: 10 * time.Millisecond}
	rate := CalibrateRate(context.Background(), src, 100*time.Millisecond)

	// ~10ms per frame gives roughly 100 fps; allow generous slack for
	// scheduler jitter.
	if rate < 20 || rate > 110 {
		t.Errorf("calibrated rate %v outside plausible range", rate)
	}
}

func TestCalibrateRateFallback(t *testing.T) {
	src := &tickingSource{interval: 5 * time.Millisecond, err: errors.New("no signal")}
	rate := CalibrateRate(context.Background(), src, 50*time.Millisecond)

	if rate != FallbackRate {
		t.Errorf("rate = %v, want fallback %v", rate, FallbackRate)
	}
}

func TestCalibrateRateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &tickingSource{interval: time.Millisecond}

	start := time.Now()
	rate := CalibrateRate(ctx, src, time.Second)
	if time.Since(start) > 500*time.Millisecond {
		t.Error("calibration did not stop on canceled context")
	}
	if rate <= 0 {
		t.Errorf("rate = %v, want a positive value", rate)
	}
}
