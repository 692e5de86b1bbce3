//go:build rp2040

package main

import (
	"errors"
	"machine"
	"strconv"
	"strings"

	"govalve/core"
)

var (
	errPinNotConfigured = errors.New("pin not configured")
	errNoPIO            = errors.New("no free PIO state machine")
)

var debugUART *machine.UART

// InitDebugUART initializes UART0 on GPIO0 (TX) and GPIO1 (RX) for the
// motor debug lines. Baud rate: 9600
func InitDebugUART() {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 9600,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		return
	}

	core.SetDebugWriter(func(s string) {
		debugUART.Write([]byte(s))
		debugUART.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	core.DebugPrintln("=== valve motor debug, 9600 baud ===")
}

// Console commands, one per line on the debug UART:
//
//	c       recalibrate
//	p <n>   go to n percent open
//	s <n>   go to position n
//	e       dump the event ring
type console struct {
	buf []byte
}

// poll collects received bytes and returns a complete line, if any
func (c *console) poll() (string, bool) {
	for debugUART.Buffered() > 0 {
		b, err := debugUART.ReadByte()
		if err != nil {
			return "", false
		}
		if b == '\r' || b == '\n' {
			if len(c.buf) == 0 {
				continue
			}
			line := string(c.buf)
			c.buf = c.buf[:0]
			return line, true
		}
		if len(c.buf) < 32 {
			c.buf = append(c.buf, b)
		}
	}
	return "", false
}

func runCommand(m *core.Motor, line string, mounted func()) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	arg := 0
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			core.DebugPrintln("bad number: " + fields[1])
			return
		}
		arg = n
	}

	var err error
	switch fields[0] {
	case "c":
		err = m.CalibrateWith(mounted)
	case "p":
		if arg < 0 {
			arg = 0
		}
		err = m.SeekPercent(uint8(min(arg, 100)))
	case "s":
		err = m.Seek(int32(arg))
	case "e":
		m.DumpEvents()
	default:
		core.DebugPrintln("unknown command: " + fields[0])
		return
	}
	if err != nil {
		core.DebugPrintln("error: " + err.Error())
		return
	}
	core.DebugPrintln("ok pos=" + strconv.Itoa(int(m.Position())) +
		" open=" + strconv.Itoa(int(m.Openness())) + "%")
}
