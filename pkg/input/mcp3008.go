//go:build linux

package input

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// MCP3008 is an 8-channel 10-bit ADC on the SPI bus, used here for the
// analog joystick axes.
type MCP3008 struct {
	port spi.PortCloser
	conn spi.Conn
}

// OpenMCP3008 opens the SPI port (empty name selects the first available
// port) and configures it for the converter. host.Init is idempotent.
func OpenMCP3008(portName string) (*MCP3008, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init periph host: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port: %w", err)
	}
	conn, err := port.Connect(1350*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}
	return &MCP3008{port: port, conn: conn}, nil
}

// Read performs one single-ended conversion on the given channel (0-7).
func (m *MCP3008) Read(channel int) (uint16, error) {
	if channel < 0 || channel > 7 {
		return 0, fmt.Errorf("channel %d out of range", channel)
	}
	// Start bit, single-ended mode + channel, one clock byte for the result.
	tx := []byte{0x01, byte(0x80 | channel<<4), 0x00}
	rx := make([]byte, len(tx))
	if err := m.conn.Tx(tx, rx); err != nil {
		return 0, fmt.Errorf("SPI transaction failed: %w", err)
	}
	return uint16(rx[1]&0x03)<<8 | uint16(rx[2]), nil
}

// Close releases the SPI port.
func (m *MCP3008) Close() error {
	return m.port.Close()
}
