package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// runner executes an external command and returns its stdout and stderr.
// Split out so tests can fake udisksctl and findmnt.
type runner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

func execRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.String(), errOut.String(), err
}

// Resolver locates the removable card's mount point and allocates sequential
// output filenames. Mount and mount-table queries run as external processes
// under a bounded timeout; any failure is reported as "no media", never as an
// error to the caller.
type Resolver struct {
	device  string
	timeout time.Duration
	run     runner
}

// NewResolver creates a resolver for a fixed block device, e.g. /dev/sda1.
func NewResolver(device string, timeout time.Duration) *Resolver {
	return &Resolver{device: device, timeout: timeout, run: execRunner}
}

// MountPoint mounts the block device if necessary and returns its filesystem
// path. When the mount attempt fails, for instance because the device is
// already mounted, the existing target is looked up in the mount table
// instead of scraping the error text.
func (r *Resolver) MountPoint(ctx context.Context) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, errOut, err := r.run(ctx, "udisksctl", "mount", "-b", r.device)
	if err == nil {
		if path, ok := parseMountedAt(out); ok {
			return path, true
		}
	} else {
		slog.Debug("mount attempt failed", "device", r.device, "error", err, "stderr", strings.TrimSpace(errOut))
	}

	out, _, err = r.run(ctx, "findmnt", "-n", "-o", "TARGET", r.device)
	if err == nil {
		if target := strings.TrimSpace(out); target != "" {
			return target, true
		}
	}
	return "", false
}

// parseMountedAt extracts the mount target from udisksctl output of the form
// "Mounted /dev/sda1 at /media/user/CARD." (trailing period optional).
func parseMountedAt(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Mounted") || !strings.Contains(line, " at ") {
			continue
		}
		idx := strings.LastIndex(line, " at ")
		path := strings.TrimSpace(line[idx+len(" at "):])
		path = strings.TrimSuffix(path, ".")
		if path != "" {
			return path, true
		}
	}
	return "", false
}

// NextFilename scans dir for entries named prefix<digits>ext and returns the
// path with the next sequential number, zero-padded to three digits. An
// empty or missing directory yields 001. Entries whose middle part is not
// purely numeric are ignored. The caller is expected to have created dir;
// there is no guard against a concurrent writer picking the same number
// because only one capture session runs at a time.
func NextFilename(dir, prefix, ext string) string {
	highest := 0
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
				continue
			}
			num := name[len(prefix) : len(name)-len(ext)]
			n, err := strconv.Atoi(num)
			if err != nil || n < 0 {
				continue
			}
			if n > highest {
				highest = n
			}
		}
	}
	return filepath.Join(dir, fmt.Sprintf("%s%03d%s", prefix, highest+1, ext))
}

// Sync flushes all filesystem buffers. Called after a photo write or a
// finished recording so that yanking the card does not lose the file.
func Sync() {
	unix.Sync()
}
