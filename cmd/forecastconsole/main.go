package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forecastconsole/internal/api"
	"forecastconsole/internal/config"
	"forecastconsole/internal/logging"
	"forecastconsole/internal/telemetry"
	"forecastconsole/internal/ui"
)

// flags shared by every command
type rootFlags struct {
	configPath string
	apiURL     string
	verbose    bool
}

// env is what a command needs once configuration is loaded.
type env struct {
	cfg       *config.Config
	log       *zap.Logger
	telemetry *telemetry.Provider
	client    *api.Client
}

func (e *env) close(ctx context.Context) {
	if e.client != nil {
		e.client.Close()
	}
	if err := e.telemetry.Shutdown(ctx); err != nil {
		e.log.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = e.log.Sync()
}

// setup loads configuration and builds the logger, tracer and API client.
func setup(ctx context.Context, f *rootFlags) (*env, error) {
	path := f.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if f.apiURL != "" {
		cfg.API.BaseURL = f.apiURL
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	log, err := logging.New(cfg.Logging, f.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	tp, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	paths := make(map[api.Resource]string, len(cfg.API.Paths))
	for r, p := range cfg.API.Paths {
		paths[api.Resource(r)] = p
	}
	client, err := api.New(api.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.GetTimeout(),
		RateLimit:      cfg.API.RateLimit,
		Burst:          cfg.API.Burst,
		MaxRetries:     cfg.API.MaxRetries,
		CacheTTL:       cfg.GetCacheTTL(),
		CacheSize:      cfg.API.CacheSize,
		Paths:          paths,
		Logger:         log,
		TracerProvider: tp.TracerProvider(),
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	log.Info("console configured",
		zap.String("config", path),
		zap.String("api", client.BaseURL()),
		zap.Bool("telemetry", tp.Enabled()))
	return &env{cfg: cfg, log: log, telemetry: tp, client: client}, nil
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "forecastconsole",
		Short: "Terminal console for the crypto forecasts API",
		Long: `forecastconsole manages the reference data of the crypto forecasting
system (asset types, assets, LLMs, prompts, schedules, surveys) and browses
the queries, forecasts, scheduler rules and functions it produces.

Run without arguments to start the interactive console.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd.Context(), f)
		},
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default ~/.forecastconsole/config.yaml)")
	root.PersistentFlags().StringVar(&f.apiURL, "api-url", "", "API base URL, overrides api.base_url")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newHealthCmd(f), newScheduleCmd())
	return root
}

func runConsole(ctx context.Context, f *rootFlags) error {
	e, err := setup(ctx, f)
	if err != nil {
		return err
	}
	defer e.close(context.Background())

	app := ui.NewAppModel(ui.Options{
		Backend:         e.client,
		Logger:          e.log,
		Locale:          e.cfg.UI.Locale,
		RefreshInterval: e.cfg.GetRefreshInterval(),
		Context:         ctx,
	})
	p := tea.NewProgram(app.AsTeaModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		e.log.Error("console exited", zap.Error(err))
		return err
	}
	return nil
}

func newHealthCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer e.close(context.Background())

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.GetTimeout())
			defer cancel()
			res, err := e.client.Health(ctx)
			if err != nil {
				return fmt.Errorf("%s unreachable: %w", e.cfg.API.BaseURL, err)
			}
			if ok, _ := res["ok"].(bool); !ok {
				return fmt.Errorf("%s unhealthy: %v", e.cfg.API.BaseURL, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", e.cfg.API.BaseURL)
			return nil
		},
	}
}

func newScheduleCmd() *cobra.Command {
	schedule := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect EventBridge schedule expressions",
	}
	schedule.AddCommand(&cobra.Command{
		Use:     "describe <expression>",
		Short:   "Describe a cron() or rate() expression and its next run",
		Example: `  forecastconsole schedule describe "cron(29 13 ? * MON-FRI *)"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return describeSchedule(cmd, args[0], time.Now())
		},
	})
	return schedule
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
