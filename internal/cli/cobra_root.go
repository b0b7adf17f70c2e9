package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"benchopt/internal/args"
	"benchopt/internal/backend"
	"benchopt/internal/config"
	"benchopt/internal/logging"
	"benchopt/internal/pipeline"
	"benchopt/internal/registry"
	"benchopt/pkg/types"
)

// newRootCmd constructs the command tree. Benchmark options follow the model
// id after "--" so they reach the resolver untouched.
func newRootCmd(opts *Options, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "benchopt",
		Short:         "Resolve and apply benchmark optimization options",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Config file (.yaml, .json or .toml; defaults BENCHOPT_CONFIG)")
	pf.StringVar(&opts.ModelsDir, "models-dir", opts.ModelsDir, "Directory of model manifests (defaults BENCHOPT_MODELS_DIR)")
	pf.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level: debug|info|warn|error|off (defaults BENCHOPT_LOG_LEVEL)")
	pf.StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format: console|json (defaults BENCHOPT_LOG_FORMAT)")
	pf.StringVar(&opts.MetricsOut, "metrics-out", opts.MetricsOut, "Write Prometheus metrics to this textfile after apply")
	pf.StringVarP(&opts.Output, "output", "o", opts.Output, "Output format: json|yaml")
	pf.StringSliceVar(&opts.DefaultArgs, "default-args", nil, "Option tokens prepended to every resolve/apply")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if opts.ConfigPath != "" {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.merge(cmd.Flags(), cfg)
		}
		l, err := logging.Setup(stderr, opts.LogLevel, opts.LogFormat)
		if err != nil {
			return err
		}
		opts.log = l
		return nil
	}

	modelsCmd := &cobra.Command{Use: "models", Short: "List registered models", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := opts.service()
		if err != nil {
			return err
		}
		return opts.print(cmd.OutOrStdout(), types.ModelsResponse{Models: svc.ListModels()})
	}}

	backendsCmd := &cobra.Command{Use: "backends", Short: "List backends and dynamo backends", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, _ []string) error {
		return opts.print(cmd.OutOrStdout(), types.BackendsResponse{Backends: backend.Names(), DynamoBackends: args.DynamoBackends()})
	}}

	resolveCmd := &cobra.Command{
		Use:     "resolve <model> [-- options...]",
		Short:   "Parse and validate options against a model",
		Example: "  benchopt resolve resnet50 -- --precision fp16 --channels-last\n  benchopt resolve hf_bert -- --backend torchdynamo --torchdynamo inductor",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			res, err := svc.Resolve(types.ResolveRequest{Model: argv[0], Args: argv[1:]})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), res)
		},
	}

	applyCmd := &cobra.Command{
		Use:     "apply <model> [-- options...]",
		Short:   "Run decoration, backend application and warm-up on a simulated model",
		Example: "  benchopt apply resnet50 -- --backend torchdynamo --torchdynamo inductor\n  benchopt apply hf_bert --trace -o yaml -- --precision amp",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			rep, runErr := svc.Apply(ctx, types.ResolveRequest{Model: argv[0], Args: argv[1:]})
			if !opts.Trace {
				rep.Trace = nil
			}
			if opts.MetricsOut != "" {
				if err := pipeline.WriteMetrics(opts.MetricsOut); err != nil {
					opts.log.Error().Err(err).Str("path", opts.MetricsOut).Msg("write metrics")
				}
			}
			if err := opts.print(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			return runErr
		},
	}
	applyCmd.Flags().BoolVar(&opts.Trace, "trace", false, "Include the simulated model's call trace")

	serveCmd := &cobra.Command{Use: "serve", Short: "Serve the HTTP API", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, _ []string) error {
		live, err := registry.NewLive(opts.ModelsDir, opts.log)
		if err != nil {
			return fmt.Errorf("load models: %w", err)
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if opts.Watch {
			if err := live.Watch(ctx); err != nil {
				return fmt.Errorf("watch models: %w", err)
			}
		}
		return serve(ctx, opts, pipeline.NewService(live, opts.DefaultArgs, opts.log))
	}}
	sf := serveCmd.Flags()
	sf.StringVar(&opts.Addr, "addr", opts.Addr, "HTTP listen address, e.g. :8080 (defaults BENCHOPT_ADDR)")
	sf.BoolVar(&opts.Watch, "watch", opts.Watch, "Reload model manifests when the directory changes")
	sf.DurationVar(&opts.ApplyTimeout, "apply-timeout", 0, "Upper bound for a single /apply run (0 = none)")
	sf.Int64Var(&opts.MaxBodyBytes, "max-body-bytes", opts.MaxBodyBytes, "Request body cap for JSON endpoints")
	sf.BoolVar(&opts.CORSEnabled, "cors", opts.CORSEnabled, "Enable CORS")
	sf.StringVar(&opts.CORSOrigins, "cors-origins", opts.CORSOrigins, "Comma-separated allowed origins")
	sf.StringVar(&opts.CORSMethods, "cors-methods", "", "Comma-separated allowed methods")
	sf.StringVar(&opts.CORSHeaders, "cors-headers", "", "Comma-separated allowed headers")

	root.AddCommand(modelsCmd, backendsCmd, resolveCmd, applyCmd, serveCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, _ []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, _ []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, _ []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, _ []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	root.AddCommand(completionCmd)
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}
