//go:build linux

package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
)

// V4L2Source reads MJPEG frames from a Video4Linux2 capture device, normally
// /dev/video0.
type V4L2Source struct {
	dev    *device.Device
	cancel context.CancelFunc
	width  int
	height int
}

// OpenV4L2 opens and starts the capture device. The device streams until
// Close is called.
func OpenV4L2(devName string, width, height int) (*V4L2Source, error) {
	dev, err := device.Open(
		devName,
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtMJPEG,
			Width:       uint32(width),
			Height:      uint32(height),
			Field:       v4l2.FieldNone,
		}),
		device.WithBufferSize(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", devName, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := dev.Start(ctx); err != nil {
		cancel()
		dev.Close()
		return nil, fmt.Errorf("failed to start capture on %s: %w", devName, err)
	}

	slog.Info("capture device started", "device", devName, "width", width, "height", height)
	return &V4L2Source{dev: dev, cancel: cancel, width: width, height: height}, nil
}

// ReadFrame blocks until the next frame arrives. The driver reuses its
// buffers, so the payload is copied out.
func (s *V4L2Source) ReadFrame(ctx context.Context) (*Frame, error) {
	select {
	case data, ok := <-s.dev.GetOutput():
		if !ok {
			return nil, fmt.Errorf("capture stream closed")
		}
		jpegData := make([]byte, len(data))
		copy(jpegData, data)
		return &Frame{JPEG: jpegData, Width: s.width, Height: s.height}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops streaming and releases the device.
func (s *V4L2Source) Close() error {
	s.cancel()
	return s.dev.Close()
}
