package serial

import (
	"bufio"
	"io"
	"strings"
)

// Port is the firmware debug UART. Open returns one backed by
// github.com/tarm/serial; tests use in-memory pipes.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the firmware debug UART
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultBaud is the rate the valve firmware prints debug lines at
const DefaultBaud = 9600

// DefaultConfig returns a default configuration for the debug UART
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 0, // Lines arrive whenever the motor does something
	}
}

// ReadLines calls fn for every line read from r, without the line ending.
// It returns nil at EOF.
func ReadLines(r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fn(strings.TrimRight(scanner.Text(), "\r"))
	}
	return scanner.Err()
}
