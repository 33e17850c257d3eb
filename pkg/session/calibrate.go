package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/wachiwi/knipskiste/pkg/capture"
)

// CalibrationWindow is the wall-clock sampling window used at startup.
const CalibrationWindow = time.Second

// FallbackRate is used when calibration reads no frames at all.
const FallbackRate = 10.0

// CalibrateRate measures the achievable capture rate by reading frames for
// the given wall-clock window and dividing the count by the actual elapsed
// time. Failed reads don't count; if nothing was read the fallback rate is
// returned. The startup estimate gets refined after every completed
// recording, so it only has to be in the right ballpark.
func CalibrateRate(ctx context.Context, src capture.Source, window time.Duration) float64 {
	start := time.Now()
	frames := 0
	for time.Since(start) < window {
		if ctx.Err() != nil {
			break
		}
		if _, err := src.ReadFrame(ctx); err == nil {
			frames++
		}
	}

	elapsed := time.Since(start).Seconds()
	if frames == 0 || elapsed <= 0 {
		slog.Warn("calibration read no frames, using fallback rate", "fps", FallbackRate)
		return FallbackRate
	}
	rate := float64(frames) / elapsed
	slog.Info("calibrated capture rate", "frames", frames, "seconds", elapsed, "fps", rate)
	return rate
}
