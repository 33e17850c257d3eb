package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/wachiwi/knipskiste/pkg/capture"
	"github.com/wachiwi/knipskiste/pkg/media"
)

// Mode is the appliance's idle capture mode.
type Mode int

const (
	ModePhoto Mode = iota
	ModeVideo
)

// String returns the overlay label for the mode.
func (m Mode) String() string {
	if m == ModeVideo {
		return "video"
	}
	return "cam"
}

// Resolver is the removable-media boundary the controller consumes.
type Resolver interface {
	MountPoint(ctx context.Context) (string, bool)
}

// Sink receives the JPEG frames of one open recording.
type Sink interface {
	WriteFrame(jpegData []byte) error
	Close() error
}

// OpenSinkFunc opens a video sink at path, stamped with the given frame rate
// and the dimensions of the frame the recording starts on.
type OpenSinkFunc func(path string, fps float64, width, height int) (Sink, error)

// recording exists only while a video file is open.
type recording struct {
	sink   Sink
	path   string
	frames uint64
	start  time.Time
}

// Controller owns the capture session state: the current mode, the open
// recording if any, the most recent frame, and the calibrated frame rate.
// It is single-threaded; every method runs on the polling goroutine.
type Controller struct {
	resolver Resolver
	openSink OpenSinkFunc

	mode Mode
	rec  *recording
	last *capture.Frame
	rate float64

	now    func() time.Time
	syncFS func()

	photosSaved       metric.Int64Counter
	recordingsStarted metric.Int64Counter
	framesRecorded    metric.Int64Counter
}

// NewController creates a controller in photo mode with the given calibrated
// frame rate.
func NewController(resolver Resolver, openSink OpenSinkFunc, rate float64) *Controller {
	meter := otel.Meter("knipskiste/session")
	photosSaved, err := meter.Int64Counter("camera.photos_saved",
		metric.WithDescription("Number of still photos written to the card"))
	if err != nil {
		slog.Error("failed to create photos_saved counter", "error", err)
	}
	recordingsStarted, err := meter.Int64Counter("camera.recordings_started",
		metric.WithDescription("Number of video recordings started"))
	if err != nil {
		slog.Error("failed to create recordings_started counter", "error", err)
	}
	framesRecorded, err := meter.Int64Counter("camera.frames_recorded",
		metric.WithDescription("Number of frames appended to video files"))
	if err != nil {
		slog.Error("failed to create frames_recorded counter", "error", err)
	}

	return &Controller{
		resolver:          resolver,
		openSink:          openSink,
		mode:              ModePhoto,
		rate:              rate,
		now:               time.Now,
		syncFS:            media.Sync,
		photosSaved:       photosSaved,
		recordingsStarted: recordingsStarted,
		framesRecorded:    framesRecorded,
	}
}

// Mode returns the current idle mode.
func (c *Controller) Mode() Mode { return c.mode }

// Recording reports whether a video file is currently open.
func (c *Controller) Recording() bool { return c.rec != nil }

// Rate returns the current calibrated frame rate.
func (c *Controller) Rate() float64 { return c.rate }

// HandleMode toggles between photo and video on a mode switch edge. The mode
// is frozen while a recording is active; flips during a recording are
// dropped rather than queued.
func (c *Controller) HandleMode() {
	if c.rec != nil {
		slog.Debug("mode switch ignored while recording")
		return
	}
	if c.mode == ModePhoto {
		c.mode = ModeVideo
	} else {
		c.mode = ModePhoto
	}
	slog.Info("mode changed", "mode", c.mode.String())
}

// HandleTrigger reacts to a trigger switch edge: save a photo, start a
// recording, or stop the active one. Before the first frame has been
// acquired the trigger is a silent no-op. Media failures surface as a log
// line and leave the state unchanged.
func (c *Controller) HandleTrigger(ctx context.Context) {
	if c.last == nil {
		return
	}
	if c.rec != nil {
		c.stopRecording(ctx)
		return
	}

	mount, ok := c.resolver.MountPoint(ctx)
	if !ok {
		slog.Info("no removable media")
		return
	}
	dcim := filepath.Join(mount, "DCIM")
	if err := os.MkdirAll(dcim, 0755); err != nil {
		slog.Error("failed to create DCIM directory", "path", dcim, "error", err)
		return
	}

	switch c.mode {
	case ModePhoto:
		c.savePhoto(ctx, dcim)
	case ModeVideo:
		c.startRecording(ctx, dcim)
	}
}

func (c *Controller) savePhoto(ctx context.Context, dcim string) {
	path := media.NextFilename(dcim, "img_", ".jpg")
	if err := os.WriteFile(path, c.last.JPEG, 0644); err != nil {
		slog.Error("failed to save photo", "path", path, "error", err)
		return
	}
	c.syncFS()
	c.photosSaved.Add(ctx, 1)
	slog.Info("saved photo", "path", path)
}

func (c *Controller) startRecording(ctx context.Context, dcim string) {
	path := media.NextFilename(dcim, "mov_", ".mp4")
	sink, err := c.openSink(path, c.rate, c.last.Width, c.last.Height)
	if err != nil {
		slog.Error("failed to open video file", "path", path, "error", err)
		return
	}
	c.rec = &recording{sink: sink, path: path, start: c.now()}
	c.recordingsStarted.Add(ctx, 1)
	slog.Info("recording started", "path", path, "fps", c.rate)
}

func (c *Controller) stopRecording(ctx context.Context) {
	rec := c.rec
	c.rec = nil

	if err := rec.sink.Close(); err != nil {
		slog.Error("failed to finalize recording", "path", rec.path, "error", err)
	}
	c.syncFS()

	elapsed := c.now().Sub(rec.start).Seconds()
	if elapsed > 0 && rec.frames > 0 {
		// Refine the rate for the next recording. The finished file keeps
		// the rate it was opened with.
		c.rate = float64(rec.frames) / elapsed
	}
	slog.Info("recording stopped",
		"path", rec.path,
		"frames", rec.frames,
		"seconds", elapsed,
		"fps", c.rate,
	)
}

// Tick caches the just-acquired frame and, while recording, appends it to
// the open video file.
func (c *Controller) Tick(ctx context.Context, frame *capture.Frame) {
	c.last = frame
	if c.rec == nil {
		return
	}
	if err := c.rec.sink.WriteFrame(frame.JPEG); err != nil {
		slog.Error("failed to append frame", "path", c.rec.path, "error", err)
		return
	}
	c.rec.frames++
	c.framesRecorded.Add(ctx, 1)
}

// Close finalizes any open recording. Safe to call when idle.
func (c *Controller) Close() {
	if c.rec != nil {
		c.stopRecording(context.Background())
	}
}
