// Command pinmap runs the pin server or the terminal pin board client.
//
//	pinmap serve  [flags]   serve /api/pins on server.addr
//	pinmap client [flags]   interactive board against api.serverUrl
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/OCAP2/pinmap/internal/config"
	"github.com/OCAP2/pinmap/internal/logging"
	intOtel "github.com/OCAP2/pinmap/internal/otel"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"

	AppName = "pinmap"
)

// runtime holds the ambient services shared by both subcommands.
type runtime struct {
	SessionStart time.Time
	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	LogFile      *os.File
	LogFilePath  string
	OTelProvider *intOtel.Provider
	closers      []func() error

	// pinCount is set once a board exists and is added to every log record.
	pinCount atomic.Pointer[func() int]
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := config.Flags()
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rt, err := setup(fs, cmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rt.close()

	ctx := context.Background()
	switch cmd {
	case "serve":
		err = serve(ctx, rt)
	case "client":
		err = client(ctx, rt, os.Stdin, os.Stdout)
	default:
		usage()
		rt.close()
		os.Exit(2)
	}
	if err != nil {
		rt.Logger.Error("Exiting with error", "command", cmd, "error", err)
		rt.close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "pinmap %s (built %s)\n\nusage: pinmap serve|client [flags]\n\n", Version, BuildDate)
	config.Flags().PrintDefaults()
}

// setup loads configuration and builds the logging stack: console first, then the
// session log file with optional OTel export and Graylog forwarding.
func setup(fs *pflag.FlagSet, cmd string) (*runtime, error) {
	rt := &runtime{
		SessionStart: time.Now(),
		SlogManager:  logging.NewSlogManager(AppName),
	}
	rt.SlogManager.Setup(nil, "info", nil)
	rt.Logger = rt.SlogManager.Logger()

	configDir, _ := fs.GetString("config")
	if err := config.Load(configDir); err != nil {
		rt.Logger.Warn("Failed to load config, using defaults!", "error", err)
	}
	if err := config.BindFlags(fs); err != nil {
		return nil, err
	}

	logFile, err := logging.OpenLogFile(viper.GetString("logsDir"), AppName+"_"+cmd, rt.SessionStart)
	if err != nil {
		rt.Logger.Error("Failed to create/open log file!", "error", err)
	} else {
		rt.LogFile = logFile
		rt.LogFilePath = logFile.Name()
		rt.closers = append(rt.closers, logFile.Close)
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var otelWriter io.Writer
		if rt.LogFile != nil {
			otelWriter = rt.LogFile
		}
		rt.OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    otelWriter,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			rt.Logger.Error("Failed to initialize OTel provider", "error", err)
			rt.OTelProvider = nil
		} else {
			rt.Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var opts []logging.SetupOption
	if viper.GetBool("graylog.enabled") {
		gw, err := logging.NewGraylogWriter(viper.GetString("graylog.address"), AppName)
		if err != nil {
			rt.Logger.Warn("Graylog disabled", "error", err)
		} else {
			opts = append(opts, logging.WithGraylog(gw))
			rt.closers = append(rt.closers, gw.Close)
		}
	}
	opts = append(opts, logging.WithContext(func() []slog.Attr {
		attrs := []slog.Attr{slog.String("command", cmd)}
		if count := rt.pinCount.Load(); count != nil {
			attrs = append(attrs, slog.Int("pins", (*count)()))
		}
		return attrs
	}))

	var otelLogProvider *sdklog.LoggerProvider
	if rt.OTelProvider != nil {
		otelLogProvider = rt.OTelProvider.LoggerProvider()
	}
	if rt.LogFile != nil {
		rt.SlogManager.Setup(rt.LogFile, viper.GetString("logLevel"), otelLogProvider, opts...)
	} else {
		rt.SlogManager.Setup(nil, viper.GetString("logLevel"), otelLogProvider, opts...)
	}
	rt.Logger = rt.SlogManager.Logger()
	slog.SetDefault(rt.Logger)
	rt.Logger.Info("Logging configured", "path", rt.LogFilePath, "level", viper.GetString("logLevel"))

	return rt, nil
}

// zerologFor returns a zerolog logger for the database and influx managers, writing
// to the session log file when there is one.
func (rt *runtime) zerologFor(component string) zerolog.Logger {
	var out zerolog.ConsoleWriter
	if rt.LogFile != nil {
		out = zerolog.ConsoleWriter{Out: rt.LogFile, NoColor: true, TimeFormat: time.RFC3339}
	} else {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(viper.GetString("logLevel"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("component", component).Logger()
}

func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if rt.OTelProvider != nil {
		if err := rt.OTelProvider.Shutdown(ctx); err != nil {
			rt.Logger.Warn("OTel shutdown failed", "error", err)
		}
		rt.OTelProvider = nil
	}
	if err := rt.SlogManager.Flush(ctx); err != nil {
		rt.Logger.Warn("Log flush failed", "error", err)
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
	rt.closers = nil
}
