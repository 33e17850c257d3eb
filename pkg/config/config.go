package config

import (
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds the appliance configuration. Every field can be overridden
// through the environment with a CAM_ prefix, e.g. CAM_VIDEO_DEVICE.
type Config struct {
	GPIO struct {
		Chip        string `mapstructure:"chip"`
		ModeLine    int    `mapstructure:"mode_line"`
		TriggerLine int    `mapstructure:"trigger_line"`
	} `mapstructure:"gpio"`
	Video struct {
		Device string `mapstructure:"device"`
		Width  int    `mapstructure:"width"`
		Height int    `mapstructure:"height"`
	} `mapstructure:"video"`
	Screen struct {
		Device string `mapstructure:"device"`
		Width  int    `mapstructure:"width"`
		Height int    `mapstructure:"height"`
	} `mapstructure:"screen"`
	Storage struct {
		BlockDevice  string        `mapstructure:"block_device"`
		MountTimeout time.Duration `mapstructure:"mount_timeout"`
	} `mapstructure:"storage"`
	Joystick struct {
		Enabled    bool `mapstructure:"enabled"`
		XChannel   int  `mapstructure:"x_channel"`
		YChannel   int  `mapstructure:"y_channel"`
		ButtonLine int  `mapstructure:"button_line"`
	} `mapstructure:"joystick"`
	Telemetry struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"telemetry"`
}

// Load reads the configuration from the environment, falling back to the
// defaults of the original hardware build (Jetson header lines 31/32,
// 570x320 LCD, SD card reader on /dev/sda1).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("gpio.chip", "gpiochip0")
	v.SetDefault("gpio.mode_line", 31)
	v.SetDefault("gpio.trigger_line", 32)
	v.SetDefault("video.device", "/dev/video0")
	v.SetDefault("video.width", 640)
	v.SetDefault("video.height", 480)
	v.SetDefault("screen.device", "/dev/fb1")
	v.SetDefault("screen.width", 570)
	v.SetDefault("screen.height", 320)
	v.SetDefault("storage.block_device", "/dev/sda1")
	v.SetDefault("storage.mount_timeout", 5*time.Second)
	v.SetDefault("joystick.enabled", false)
	v.SetDefault("joystick.x_channel", 0)
	v.SetDefault("joystick.y_channel", 1)
	v.SetDefault("joystick.button_line", 13)
	v.SetDefault("telemetry.endpoint", "")

	// Register keys so AutomaticEnv picks them up without a config file.
	for _, key := range []string{
		"gpio.chip", "gpio.mode_line", "gpio.trigger_line",
		"video.device", "video.width", "video.height",
		"screen.device", "screen.width", "screen.height",
		"storage.block_device", "storage.mount_timeout",
		"joystick.enabled", "joystick.x_channel", "joystick.y_channel", "joystick.button_line",
		"telemetry.endpoint",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	// Environment values arrive as strings; decode them into the typed
	// fields leniently.
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
