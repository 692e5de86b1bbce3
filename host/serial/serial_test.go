package serial

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	var lines []string
	err := ReadLines(strings.NewReader("[MOTOR] ENABLE dir=1 pos=0 max=0 rt=0\r\nboot\n\nlast"), func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"[MOTOR] ENABLE dir=1 pos=0 max=0 rt=0", "boot", "", "last"}, lines)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	require.Equal(t, "/dev/ttyUSB0", cfg.Device)
	require.Equal(t, DefaultBaud, cfg.Baud)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(nil)
	require.Error(t, err)

	_, err = Open(&Config{Device: "/dev/null", Baud: 0})
	require.EqualError(t, err, "invalid baud rate 0")
}

type lineBuffer struct {
	*strings.Reader
	closed bool
}

func (b *lineBuffer) Write(p []byte) (int, error) { return len(p), nil }

func (b *lineBuffer) Close() error {
	b.closed = true
	return nil
}

func TestAnyReadWriteCloserIsAPort(t *testing.T) {
	buf := &lineBuffer{Reader: strings.NewReader("[MOTOR] DISABLE dir=0 pos=150 max=300 rt=160\n")}
	var port Port = buf

	var lines []string
	require.NoError(t, ReadLines(port, func(line string) { lines = append(lines, line) }))
	require.NoError(t, port.Close())
	require.True(t, buf.closed)
	require.Equal(t, []string{"[MOTOR] DISABLE dir=0 pos=150 max=300 rt=160"}, lines)
}
