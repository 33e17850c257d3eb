//go:build linux

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wachiwi/knipskiste/pkg/capture"
	"github.com/wachiwi/knipskiste/pkg/config"
	"github.com/wachiwi/knipskiste/pkg/display"
	"github.com/wachiwi/knipskiste/pkg/input"
	"github.com/wachiwi/knipskiste/pkg/logger"
	"github.com/wachiwi/knipskiste/pkg/media"
	"github.com/wachiwi/knipskiste/pkg/overlay"
	"github.com/wachiwi/knipskiste/pkg/session"
	"github.com/wachiwi/knipskiste/pkg/telemetry"
	"github.com/wachiwi/knipskiste/pkg/video"
)

func main() {
	logger.Setup()
	if err := run(); err != nil {
		logger.Fatal("camera failed", "error", err)
	}
}

// run owns every hardware resource through defers so that teardown happens
// unconditionally and in order: open recording first, then the frame
// source, the display, and finally the GPIO lines.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Endpoint != "" {
		shutdown, err := telemetry.Setup(ctx, "knipskiste", cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry disabled", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Error("telemetry shutdown failed", "error", err)
				}
			}()
		}
	}

	gpio, err := input.OpenGPIO(cfg.GPIO.Chip)
	if err != nil {
		return err
	}
	defer gpio.Close()

	disp, err := display.OpenFramebuffer(cfg.Screen.Device, cfg.Screen.Width, cfg.Screen.Height)
	if err != nil {
		return err
	}
	defer disp.Close()

	src, err := capture.OpenV4L2(cfg.Video.Device, cfg.Video.Width, cfg.Video.Height)
	if err != nil {
		return err
	}
	defer src.Close()

	slog.Info("calibrating capture rate")
	rate := session.CalibrateRate(ctx, src, session.CalibrationWindow)

	resolver := media.NewResolver(cfg.Storage.BlockDevice, cfg.Storage.MountTimeout)
	controller := session.NewController(resolver, openVideoSink, rate)
	defer controller.Close()

	modeLine, err := gpio.Button(cfg.GPIO.ModeLine)
	if err != nil {
		return err
	}
	triggerLine, err := gpio.Button(cfg.GPIO.TriggerLine)
	if err != nil {
		return err
	}
	modeSwitch := input.NewSwitch("mode", modeLine, func(bool) {
		controller.HandleMode()
	})
	triggerSwitch := input.NewSwitch("trigger", triggerLine, func(bool) {
		controller.HandleTrigger(ctx)
	})

	var stick *input.Joystick
	if cfg.Joystick.Enabled {
		adc, err := input.OpenMCP3008("")
		if err != nil {
			slog.Warn("joystick disabled", "error", err)
		} else {
			defer adc.Close()
			button, err := gpio.Button(cfg.Joystick.ButtonLine)
			if err != nil {
				slog.Warn("joystick button unavailable", "error", err)
				stick = input.NewJoystick(adc, cfg.Joystick.XChannel, cfg.Joystick.YChannel, nil)
			} else {
				stick = input.NewJoystick(adc, cfg.Joystick.XChannel, cfg.Joystick.YChannel, button)
			}
		}
	}

	loop := &session.Loop{
		Switches:   []*input.Switch{modeSwitch, triggerSwitch},
		Source:     src,
		Display:    disp,
		Controller: controller,
		Overlay:    overlay.New(cfg.Screen.Width, cfg.Screen.Height),
		Joystick:   stick,
	}

	slog.Info("camera ready, press 'q' to quit", "mode", controller.Mode().String(), "fps", controller.Rate())
	return loop.Run(ctx)
}

func openVideoSink(path string, fps float64, width, height int) (session.Sink, error) {
	return video.Open(path, fps, width, height)
}
