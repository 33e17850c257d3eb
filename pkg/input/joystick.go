package input

import "fmt"

// ADC reads one analog channel and returns the raw converter count.
type ADC interface {
	Read(channel int) (uint16, error)
}

// Position is one joystick sample. X and Y are normalized to [-1, 1] with 0
// at the stick's center rest position.
type Position struct {
	X, Y    float64
	Pressed bool
}

// Joystick samples a two-axis analog stick plus its push button. It is not
// on the capture session's critical path; the loop polls it for completeness
// and logs the position at debug level.
type Joystick struct {
	adc        ADC
	xCh, yCh   int
	button     Sampler
	resolution uint16
}

// NewJoystick creates a joystick over a 10-bit ADC (MCP3008 class). button
// may be nil when the stick has no push switch.
func NewJoystick(adc ADC, xCh, yCh int, button Sampler) *Joystick {
	return &Joystick{adc: adc, xCh: xCh, yCh: yCh, button: button, resolution: 1023}
}

// Sample reads both axes and the button once.
func (j *Joystick) Sample() (Position, error) {
	x, err := j.adc.Read(j.xCh)
	if err != nil {
		return Position{}, fmt.Errorf("read x channel: %w", err)
	}
	y, err := j.adc.Read(j.yCh)
	if err != nil {
		return Position{}, fmt.Errorf("read y channel: %w", err)
	}

	pos := Position{
		X: j.normalize(x),
		Y: j.normalize(y),
	}
	if j.button != nil {
		pressed, err := j.button.Pressed()
		if err != nil {
			return Position{}, fmt.Errorf("read button: %w", err)
		}
		pos.Pressed = pressed
	}
	return pos, nil
}

func (j *Joystick) normalize(raw uint16) float64 {
	mid := float64(j.resolution) / 2
	v := (float64(raw) - mid) / mid
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return v
}
