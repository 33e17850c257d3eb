package video

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// Writer pipes MJPEG frames into an ffmpeg process that stream-copies them
// into an MP4 container at the given frame rate. The encoder never
// re-compresses; frame dimensions are carried by the JPEG stream itself and
// are recorded here for logging only.
type Writer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	path   string
}

// Open starts the ffmpeg process writing to path. fps is the calibrated
// capture rate the container is stamped with.
func Open(path string, fps float64, width, height int) (*Writer, error) {
	cmd := exec.Command(
		"ffmpeg",
		"-y",
		"-f", "mjpeg",
		"-framerate", fmt.Sprintf("%.3f", fps),
		"-i", "-", // MJPEG frames on stdin
		"-c:v", "copy",
		"-hide_banner",
		"-loglevel", "error",
		path,
	)

	w := &Writer{cmd: cmd, path: path}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	w.stdin = stdin
	cmd.Stderr = &w.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	slog.Info("video writer opened", "path", path, "fps", fps, "width", width, "height", height)
	return w, nil
}

// WriteFrame appends one JPEG frame to the stream.
func (w *Writer) WriteFrame(jpegData []byte) error {
	if _, err := w.stdin.Write(jpegData); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Close ends the stream and waits for ffmpeg to finalize the container.
func (w *Writer) Close() error {
	if err := w.stdin.Close(); err != nil {
		return fmt.Errorf("failed to close ffmpeg stdin: %w", err)
	}
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg exited with error: %w, stderr: %s", err, w.stderr.String())
	}
	return nil
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}
