package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNextFilename(t *testing.T) {
	dir := t.TempDir()

	// Empty directory starts at 001.
	got := NextFilename(dir, "img_", ".jpg")
	want := filepath.Join(dir, "img_001.jpg")
	if got != want {
		t.Errorf("empty dir: got %q, want %q", got, want)
	}

	// Idempotent when nothing was created in between.
	if again := NextFilename(dir, "img_", ".jpg"); again != got {
		t.Errorf("not idempotent: %q vs %q", again, got)
	}

	// Non-contiguous numbering continues from the maximum.
	for _, name := range []string{"img_007.jpg", "img_010.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	got = NextFilename(dir, "img_", ".jpg")
	want = filepath.Join(dir, "img_011.jpg")
	if got != want {
		t.Errorf("gap sequence: got %q, want %q", got, want)
	}

	// Foreign and malformed entries are ignored.
	for _, name := range []string{"mov_099.mp4", "img_abc.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if got = NextFilename(dir, "img_", ".jpg"); got != want {
		t.Errorf("with foreign entries: got %q, want %q", got, want)
	}

	// Missing directory behaves like an empty one.
	got = NextFilename(filepath.Join(dir, "missing"), "mov_", ".mp4")
	if filepath.Base(got) != "mov_001.mp4" {
		t.Errorf("missing dir: got %q", filepath.Base(got))
	}
}

func TestParseMountedAt(t *testing.T) {
	cases := []struct {
		name string
		out  string
		want string
		ok   bool
	}{
		{
			name: "udisks2 style with trailing period",
			out:  "Mounted /dev/sda1 at /media/user/CARD.\n",
			want: "/media/user/CARD",
			ok:   true,
		},
		{
			name: "no trailing period",
			out:  "Mounted /dev/sda1 at /run/media/cam/0000-0001",
			want: "/run/media/cam/0000-0001",
			ok:   true,
		},
		{
			name: "unrelated output",
			out:  "Object /org/freedesktop/UDisks2/block_devices/sda1 is not a mountable filesystem.",
			ok:   false,
		},
		{
			name: "empty",
			out:  "",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseMountedAt(tc.out)
			if ok != tc.ok || got != tc.want {
				t.Errorf("parseMountedAt(%q) = (%q, %v), want (%q, %v)", tc.out, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestMountPoint(t *testing.T) {
	t.Run("fresh mount", func(t *testing.T) {
		r := NewResolver("/dev/sda1", time.Second)
		r.run = func(ctx context.Context, name string, args ...string) (string, string, error) {
			if name != "udisksctl" {
				t.Fatalf("unexpected command %q", name)
			}
			return "Mounted /dev/sda1 at /media/cam/CARD.\n", "", nil
		}
		path, ok := r.MountPoint(context.Background())
		if !ok || path != "/media/cam/CARD" {
			t.Errorf("got (%q, %v)", path, ok)
		}
	})

	t.Run("already mounted falls back to findmnt", func(t *testing.T) {
		r := NewResolver("/dev/sda1", time.Second)
		r.run = func(ctx context.Context, name string, args ...string) (string, string, error) {
			switch name {
			case "udisksctl":
				return "", "Error mounting /dev/sda1: GDBus.Error: Device /dev/sda1 is already mounted at `/media/cam/CARD'.\n", errors.New("exit status 1")
			case "findmnt":
				return "/media/cam/CARD\n", "", nil
			}
			t.Fatalf("unexpected command %q", name)
			return "", "", nil
		}
		path, ok := r.MountPoint(context.Background())
		if !ok || path != "/media/cam/CARD" {
			t.Errorf("got (%q, %v)", path, ok)
		}
	})

	t.Run("device absent", func(t *testing.T) {
		r := NewResolver("/dev/sda1", time.Second)
		r.run = func(ctx context.Context, name string, args ...string) (string, string, error) {
			return "", "Error looking up object for device /dev/sda1\n", errors.New("exit status 1")
		}
		if path, ok := r.MountPoint(context.Background()); ok {
			t.Errorf("expected no media, got %q", path)
		}
	})

	t.Run("fresh mount skips the mount table query", func(t *testing.T) {
		r := NewResolver("/dev/sda1", time.Second)
		findmntCalls := 0
		r.run = func(ctx context.Context, name string, args ...string) (string, string, error) {
			if name == "findmnt" {
				findmntCalls++
				return "", "", errors.New("should not run")
			}
			return "Mounted /dev/sda1 at /media/cam/CARD.\n", "", nil
		}
		if _, ok := r.MountPoint(context.Background()); !ok {
			t.Fatal("fresh mount failed")
		}
		if findmntCalls != 0 {
			t.Errorf("findmnt ran %d times on a fresh mount", findmntCalls)
		}
	})
}
