package console

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DefaultBaud matches the 16550 UART setup the kernel's serial log expects.
const DefaultBaud = 115200

// OpenSerial opens the serial port at path for the console mirror, 8N1.
func OpenSerial(path string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("console: open serial %s: %w", path, err)
	}
	return port, nil
}

// SerialPorts lists the serial ports present on the host.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
