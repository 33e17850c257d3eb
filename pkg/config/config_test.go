package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GPIO.Chip != "gpiochip0" {
		t.Errorf("gpio chip = %q", cfg.GPIO.Chip)
	}
	if cfg.Video.Device != "/dev/video0" {
		t.Errorf("video device = %q", cfg.Video.Device)
	}
	if cfg.Screen.Width != 570 || cfg.Screen.Height != 320 {
		t.Errorf("screen = %dx%d, want 570x320", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Storage.BlockDevice != "/dev/sda1" {
		t.Errorf("block device = %q", cfg.Storage.BlockDevice)
	}
	if cfg.Storage.MountTimeout != 5*time.Second {
		t.Errorf("mount timeout = %v", cfg.Storage.MountTimeout)
	}
	if cfg.Joystick.Enabled {
		t.Error("joystick enabled by default")
	}
	if cfg.Telemetry.Endpoint != "" {
		t.Errorf("telemetry endpoint = %q, want disabled", cfg.Telemetry.Endpoint)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CAM_VIDEO_DEVICE", "/dev/video2")
	t.Setenv("CAM_GPIO_TRIGGER_LINE", "27")
	t.Setenv("CAM_STORAGE_MOUNT_TIMEOUT", "2s")
	t.Setenv("CAM_JOYSTICK_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Video.Device != "/dev/video2" {
		t.Errorf("video device = %q", cfg.Video.Device)
	}
	if cfg.GPIO.TriggerLine != 27 {
		t.Errorf("trigger line = %d", cfg.GPIO.TriggerLine)
	}
	if cfg.Storage.MountTimeout != 2*time.Second {
		t.Errorf("mount timeout = %v", cfg.Storage.MountTimeout)
	}
	if !cfg.Joystick.Enabled {
		t.Error("joystick override not applied")
	}
}
