// Package cli implements the benchopt command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"benchopt/internal/args"
	"benchopt/internal/backend"
	"benchopt/internal/config"
	"benchopt/internal/logging"
	"benchopt/internal/pipeline"
	"benchopt/internal/registry"
)

// Options collects persistent flags, environment defaults and the optional
// config file. Flags win over the file, the file wins over the environment.
type Options struct {
	ConfigPath  string
	ModelsDir   string
	LogLevel    string
	LogFormat   string
	MetricsOut  string
	Output      string
	DefaultArgs []string
	Trace       bool

	Addr         string
	Watch        bool
	ApplyTimeout time.Duration
	MaxBodyBytes int64
	CORSEnabled  bool
	CORSOrigins  string
	CORSMethods  string
	CORSHeaders  string

	log zerolog.Logger
}

func defaultOptions() *Options {
	return &Options{
		ConfigPath:   logging.EnvStr(logging.EnvConfig, ""),
		ModelsDir:    logging.EnvStr(logging.EnvModelsDir, "configs/models"),
		LogLevel:     logging.EnvStr(logging.EnvLogLevel, "info"),
		LogFormat:    logging.EnvStr(logging.EnvLogFormat, "console"),
		Output:       "json",
		Addr:         logging.EnvStr(logging.EnvAddr, ":8080"),
		MaxBodyBytes: int64(logging.EnvInt(logging.EnvMaxBodyBytes, 1<<20)),
		CORSEnabled:  logging.EnvBool(logging.EnvCORSEnabled, false),
		CORSOrigins:  logging.EnvStr(logging.EnvCORSOrigins, ""),
		log:          zerolog.Nop(),
	}
}

// merge copies config file values into fields whose flag was not set.
func (o *Options) merge(fs *pflag.FlagSet, cfg config.Config) {
	unset := func(name string) bool { return !fs.Changed(name) }
	if cfg.ModelsDir != "" && unset("models-dir") {
		o.ModelsDir = cfg.ModelsDir
	}
	if cfg.LogLevel != "" && unset("log-level") {
		o.LogLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && unset("log-format") {
		o.LogFormat = cfg.LogFormat
	}
	if cfg.MetricsOut != "" && unset("metrics-out") {
		o.MetricsOut = cfg.MetricsOut
	}
	if cfg.Addr != "" && unset("addr") {
		o.Addr = cfg.Addr
	}
	if cfg.WatchModels && unset("watch") {
		o.Watch = true
	}
	if cfg.MaxBodyBytes > 0 && unset("max-body-bytes") {
		o.MaxBodyBytes = cfg.MaxBodyBytes
	}
	if cfg.CORSEnabled && unset("cors") {
		o.CORSEnabled = true
	}
	if len(cfg.CORSAllowedOrigins) > 0 && unset("cors-origins") {
		o.CORSOrigins = strings.Join(cfg.CORSAllowedOrigins, ",")
	}
	if len(cfg.CORSAllowedMethods) > 0 && unset("cors-methods") {
		o.CORSMethods = strings.Join(cfg.CORSAllowedMethods, ",")
	}
	if len(cfg.CORSAllowedHeaders) > 0 && unset("cors-headers") {
		o.CORSHeaders = strings.Join(cfg.CORSAllowedHeaders, ",")
	}
	o.DefaultArgs = append(append([]string(nil), cfg.DefaultArgs...), o.DefaultArgs...)
}

func (o *Options) service() (*pipeline.Service, error) {
	reg, err := registry.LoadDir(o.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	o.log.Debug().Str("dir", o.ModelsDir).Int("models", reg.Len()).Msg("models loaded")
	return pipeline.NewService(reg, o.DefaultArgs, o.log), nil
}

// print writes v as indented JSON or as YAML. YAML output goes through the
// JSON encoding so both formats share field names and order.
func (o *Options) print(w io.Writer, v any) error {
	switch strings.ToLower(o.Output) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return err
		}
		blockStyle(&doc)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", o.Output)
	}
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// exitCode maps a command error to a process exit code: 2 for rejected
// options or option combinations, 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case args.IsUsage(err), args.IsUnsupported(err),
		backend.IsUnconsumedArgs(err), backend.IsIncompatible(err):
		return 2
	default:
		return 1
	}
}

func execute(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := newRootCmd(defaultOptions(), stdout, stderr)
	if len(argv) == 0 {
		_ = root.Usage()
		return 2
	}
	root.SetArgs(argv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	return 0
}

// MainWithArgs runs the command tree on argv and returns an exit code.
func MainWithArgs(argv []string) int {
	return execute(context.Background(), argv, os.Stdout, os.Stderr)
}

// Main returns an exit code for use by cmd/benchopt.
func Main() int { return MainWithArgs(os.Args[1:]) }
