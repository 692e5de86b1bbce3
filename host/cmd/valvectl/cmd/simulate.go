package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"govalve/core"
	"govalve/sim"
)

// flags
var (
	simProfile  string
	simRealtime bool
	simEvents   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a calibration and seek script against a simulated valve",
	Run:   runSimulateCmd,
}

func init() {
	RootCmd.AddCommand(simulateCmd)
	flags := simulateCmd.Flags()
	flags.StringVarP(&simProfile, "profile", "p", "", "YAML simulation profile, built-in default when empty")
	flags.BoolVarP(&simRealtime, "realtime", "r", false, "pace ticks at the real tick rate")
	flags.BoolVarP(&simEvents, "events", "e", false, "print the motor event ring after the run")
}

// logStatus shows calibration progress the way the display would
type logStatus struct{}

func (logStatus) MotorActive(active bool) {
	log.Debugf("motor active: %v", active)
}

func (logStatus) ShowStatus(s core.Status) {
	log.Infof("display: %q", s.String())
}

func runSimulateCmd(_ *cobra.Command, _ []string) {
	ConfigureVerbosity()

	p := sim.DefaultProfile()
	if simProfile != "" {
		var err error
		if p, err = sim.ReadProfile(simProfile); err != nil {
			log.Fatalf("reading profile: %v", err)
		}
	}

	core.SetDebugWriter(func(s string) { log.Debug(s) })
	core.SetDebugEnabled(rootVerboseFlag)

	opts := []sim.Option{sim.WithStatus(logStatus{})}
	if simRealtime {
		opts = append(opts, sim.WithClock(clock.New()))
	}
	h, err := sim.NewHarness(p, opts...)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := h.RunScript(ctx, p.Steps)
	if err != nil {
		log.Fatal(err)
	}
	printResults(os.Stdout, results)
	if simEvents {
		for _, e := range h.Motor.Events() {
			fmt.Println(core.FormatEvent(e))
		}
	}
}

func printResults(w io.Writer, results []sim.StepResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tVALUE\tRESULT\tPOSITION\tMAX\tPHYSICAL\tTIME")
	for _, r := range results {
		result := "ok"
		if r.Err != nil {
			result = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%d\t%v\n",
			r.Step.Action, r.Step.Value, result, r.Position, r.Max, r.Physical, r.Elapsed)
	}
	tw.Flush()
}
