package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"govalve/sim"
)

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, []sim.StepResult{
		{Step: sim.Step{Action: sim.ActionCalibrate}, Max: 300, Physical: 0, Elapsed: 4 * time.Second},
		{Step: sim.Step{Action: sim.ActionSeek, Value: 200}, Err: errors.New("motor stalled"), Position: 120, Max: 300, Physical: 120},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "STEP"))
	require.Contains(t, lines[1], "calibrate")
	require.Contains(t, lines[1], "4s")
	require.Contains(t, lines[2], "motor stalled")
	require.Contains(t, lines[2], "120")
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["simulate"])
	require.True(t, names["monitor"])
}
