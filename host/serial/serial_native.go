package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// nativePort is a tarm/serial port remembering the device it was opened on
type nativePort struct {
	*serial.Port
	device string
}

// Open opens the debug UART described by cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Baud <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", cfg.Baud)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &nativePort{Port: port, device: cfg.Device}, nil
}

func (p *nativePort) Close() error {
	if err := p.Port.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", p.device, err)
	}
	return nil
}
