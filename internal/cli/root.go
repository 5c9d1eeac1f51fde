package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1A7432/wcf-onebot/internal/domain"
	"github.com/1A7432/wcf-onebot/internal/infra/config"
	"github.com/1A7432/wcf-onebot/internal/infra/httpclient"
	"github.com/1A7432/wcf-onebot/internal/infra/logger"
	"github.com/1A7432/wcf-onebot/internal/infra/prober"
	"github.com/1A7432/wcf-onebot/internal/infra/runstore"
	"github.com/1A7432/wcf-onebot/internal/ports"
	"github.com/1A7432/wcf-onebot/internal/usecase"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	baseURL string
	envFile string
	format  string
	save    bool
	saveDir string
	debug   bool
	logDir  string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "wcfprobe",
		Short:        "Probe the WCF HTTP API and print each response",
		Long:         "Sends one GET to each fixed WCF endpoint, in order, and prints the raw body and status code.\nFailed probes are reported and never stop the run.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbes(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.baseURL, "base-url", "", "WCF base URL (overrides WCF_BASE_URL / WCF_HOST / WCF_PORT)")
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read WCF_* settings from (skipped if missing)")
	f.StringVar(&opts.format, "format", "pretty", "Output format: pretty|json|yaml")
	f.BoolVar(&opts.save, "save", false, "Save a JSON report of the run")
	f.StringVar(&opts.saveDir, "save-dir", runstore.DefaultDir, "Directory for saved reports")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose logging to <log-dir>/wcfprobe.log")
	cmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", logger.DefaultDir, "Directory for the debug log")

	cmd.AddCommand(endpointsCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

func runProbes(cmd *cobra.Command, opts rootOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	baseURL, err := resolveBaseURL(opts)
	if err != nil {
		return err
	}

	if opts.debug {
		cleanup, lerr := logger.Setup(logger.Config{Dir: opts.logDir, Debug: true})
		if lerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: debug log disabled: %v\n", lerr)
		}
		if cleanup != nil {
			defer func() { _ = cleanup() }()
			fmt.Fprintf(cmd.ErrOrStderr(), "debug log: %s\n", logger.Path())
		}
	}
	log := logger.L()

	out := cmd.OutOrStdout()

	ucOpts := []usecase.Option{usecase.WithLogger(log)}
	if opts.save {
		var store ports.ReportStore = runstore.NewJSONStore(opts.saveDir, runstore.WithLogger(log))
		ucOpts = append(ucOpts, usecase.WithStore(store))
	}

	pretty := opts.format == formatPretty || opts.format == ""
	if pretty {
		printHeader(out, baseURL)
		r := newPrettyRenderer(out)
		ucOpts = append(ucOpts, usecase.WithObserver(r.printProbe))
	}

	uc := usecase.NewRunProbes(prober.New(httpclient.New(httpclient.DefaultConfig()), prober.WithLogger(log)), ucOpts...)
	run, reportID, err := uc.Execute(cmd.Context(), baseURL, domain.DefaultEndpoints())

	if pretty {
		printSummary(out, run, reportID)
	} else if perr := printRun(out, run, reportID, opts.format); perr != nil {
		return perr
	}

	// Probe failures are part of the output, not the exit status.
	return err
}

func resolveBaseURL(opts rootOptions) (string, error) {
	if opts.baseURL != "" {
		base, err := config.NormalizeBaseURL(opts.baseURL)
		if err != nil {
			return "", &domain.OpError{
				Op:   "cli.base_url",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%w: --base-url: %v", domain.ErrInvalidConfig, err),
			}
		}
		return base, nil
	}

	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	cfg, err := config.NewLoader(config.WithEnvFiles(files...)).Load()
	if err != nil {
		return "", err
	}
	return cfg.BaseURL(), nil
}
