package cmd

import (
	"context"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"govalve/host/mcu"
	"govalve/host/serial"
)

// flags
var (
	monDevice string
	monBaud   int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow the motor events printed on the firmware debug UART",
	Run:   runMonitorCmd,
}

func init() {
	RootCmd.AddCommand(monitorCmd)
	flags := monitorCmd.Flags()
	flags.StringVarP(&monDevice, "device", "d", "/dev/ttyUSB0", "serial device of the debug UART")
	flags.IntVarP(&monBaud, "baud", "b", serial.DefaultBaud, "baud rate")
}

func runMonitorCmd(_ *cobra.Command, _ []string) {
	ConfigureVerbosity()

	conn := mcu.NewMCU()
	if err := conn.Connect(monDevice, monBaud); err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	log.Infof("listening on %s at %d baud", monDevice, monBaud)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := conn.Monitor(ctx, nil); err != nil {
		log.Error(err)
	}

	s := conn.State()
	log.WithFields(log.Fields{
		"calibrated": s.Calibrated,
		"max":        s.Max,
		"position":   s.Position,
		"stalls":     s.Stalls,
		"arrivals":   s.Arrivals,
		"failures":   s.Failures,
	}).Info("summary")
}
