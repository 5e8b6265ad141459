package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/experiment"
	"github.com/san-kum/astroprop/internal/logging"
	"github.com/san-kum/astroprop/internal/optim"
	"github.com/san-kum/astroprop/internal/sim"
	"github.com/san-kum/astroprop/internal/storage"
	"github.com/san-kum/astroprop/internal/telemetry"
	"github.com/san-kum/astroprop/internal/viz"
)

var (
	configFile string
	preset     string
	duration   float64
	interval   float64
	window     float64
	parallel   bool
	noSave     bool
	live       bool
	// transfer
	transferKind string
	fromRadius   float64
	toRadius     float64
	viaRadius    float64
	fly          bool
	optimize     bool
	// plot and export
	plotVar   string
	format    string
	outFile   string
	plotWidth int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "astroprop",
		Short:         "event-driven orbit propagation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("data", ".astroprop", "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve prometheus metrics on this address while running")
	viper.SetEnvPrefix("astroprop")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "propagate a scenario file or preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	runCmd.Flags().Float64Var(&duration, "duration", 0, "override duration in seconds")
	runCmd.Flags().Float64Var(&interval, "interval", 0, "override checkpoint interval in seconds")
	runCmd.Flags().Float64Var(&window, "window", 0, "override event window in seconds")
	runCmd.Flags().BoolVar(&parallel, "parallel", false, "propagate spacecraft concurrently")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&live, "live", false, "show a live terminal view while propagating")

	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "compute a transfer between circular orbits",
		RunE:  runTransfer,
	}
	transferCmd.Flags().StringVar(&transferKind, "kind", "hohmann", "transfer kind (hohmann|bielliptic)")
	transferCmd.Flags().Float64Var(&fromRadius, "from", 6628000, "initial orbit radius in meters")
	transferCmd.Flags().Float64Var(&toRadius, "to", 42164154, "target orbit radius in meters")
	transferCmd.Flags().Float64Var(&viaRadius, "via", 0, "intermediate apoapsis for bielliptic (default 2x target)")
	transferCmd.Flags().BoolVar(&optimize, "optimize", false, "search the bielliptic intermediate apoapsis for the lowest delta-v")
	transferCmd.Flags().BoolVar(&fly, "fly", false, "propagate the transfer and report the arrival orbit")
	transferCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run when flying")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available preset scenarios",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotVar, "var", "radius", "quantity to plot (radius|speed|x|y|z|vx|vy|vz)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json|csv|svg)")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, transferCmd, presetsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newLogger() (log.Logger, error) {
	return logging.New(os.Stderr, viper.GetString("log-level"))
}

func dataDir() string { return viper.GetString("data") }

func newStore(logger log.Logger) (*storage.Store, error) {
	st := storage.New(dataDir(), logger)
	return st, st.Init()
}

func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) == 1:
		c, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		return nil, errors.New("a scenario file or --preset is required")
	}

	// CLI flags override the scenario.
	if cmd.Flags().Changed("duration") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("interval") {
		cfg.Interval = interval
	}
	if cmd.Flags().Changed("window") {
		cfg.Window = window
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = parallel
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	return execute(cfg)
}

// execute runs cfg to completion, storing and summarising the result.
func execute(cfg *config.Config) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	if live {
		// the terminal belongs to the live view
		logger = log.NewNopLogger()
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	var observer sim.Observer = sim.NewLogObserver(logger)
	if live {
		program = tea.NewProgram(viz.NewModel(cfg.Name, 0, cfg.Duration, cancel))
		observer = viz.NewObserver(program)
	}

	promReg := prometheus.NewRegistry()
	metrics := telemetry.New(promReg)
	if err := exp.Setup(logger, metrics, observer); err != nil {
		return err
	}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: telemetry.Handler(promReg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				level.Error(logger).Log("msg", "metrics server", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	start := time.Now()
	var result *sim.Result
	if live {
		result, err = runLive(ctx, program, exp)
	} else {
		fmt.Println(titleStyle.Render(fmt.Sprintf("propagating %s (%d spacecraft, %.0fs)", cfg.Name, len(cfg.Spacecraft), cfg.Duration)))
		result, err = exp.Run(ctx)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID := ""
	if !noSave {
		st, err := newStore(logger)
		if err != nil {
			return err
		}
		if runID, err = st.Save(cfg, result); err != nil {
			return err
		}
	}

	fmt.Println(renderSummary(runID, elapsed, result))
	return nil
}

// runLive propagates in the background while the view owns the terminal.
// The view quits when the run returns; quitting the view cancels the run.
func runLive(ctx context.Context, program *tea.Program, exp *experiment.Experiment) (*sim.Result, error) {
	type outcome struct {
		result *sim.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := exp.Run(ctx)
		done <- outcome{result, err}
		program.Send(viz.DoneMsg{Err: err})
	}()

	if _, err := program.Run(); err != nil {
		return nil, err
	}
	out := <-done
	return out.result, out.err
}

func runTransfer(cmd *cobra.Command, args []string) error {
	if optimize {
		if transferKind != "bielliptic" {
			return errors.New("--optimize applies to bielliptic transfers")
		}
		body, err := bodies.Lookup(config.DefaultBody)
		if err != nil {
			return err
		}
		rb, dv, err := optim.BiEllipticApoapsis(cmd.Context(), fromRadius, toRadius, body.Mu,
			optim.Geometric(math.Max(fromRadius, toRadius), 50*math.Max(fromRadius, toRadius), 64))
		if err != nil {
			return err
		}
		fmt.Println(row("best apoapsis", fmt.Sprintf("%.0f km (%.3f m/s)", rb/1000, dv)))
		viaRadius = rb
	}

	cfg := config.DefaultConfig()
	cfg.Name = transferKind
	tc := &config.TransferConfig{Kind: transferKind, TargetRadius: toRadius, IntermediateRadius: viaRadius, Start: 10}
	cfg.Spacecraft = []config.SpacecraftConfig{{
		ID:       "sat-1",
		Position: &config.Vec3{fromRadius, 0, 0},
		Transfer: tc,
	}}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	tr := exp.Transfers()["sat-1"]
	fmt.Println(renderTransfer(transferKind, fromRadius, toRadius, tr))

	if !fly {
		return nil
	}
	cfg.Duration = tc.Start + tr.TransitTime() + 600
	cfg.Interval = cfg.Duration / 200
	if transferKind == "bielliptic" {
		cfg.Window = 10
	}
	return execute(cfg)
}
