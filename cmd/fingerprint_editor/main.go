package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/OCAP2/fingerprint-editor/internal/config"
	"github.com/OCAP2/fingerprint-editor/internal/controller"
	"github.com/OCAP2/fingerprint-editor/internal/events"
	"github.com/OCAP2/fingerprint-editor/internal/logging"
	"github.com/OCAP2/fingerprint-editor/internal/registry"
	"github.com/OCAP2/fingerprint-editor/internal/scene"
	"github.com/OCAP2/fingerprint-editor/internal/storage"
	"github.com/OCAP2/fingerprint-editor/internal/telemetry"
	"github.com/OCAP2/fingerprint-editor/internal/view"
	"github.com/OCAP2/fingerprint-editor/internal/workflow"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "fingerprint_editor"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// run wires the editor and drives the console. It returns the process exit code.
func run(args []string, in io.Reader, out io.Writer) int {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.SetOutput(out)
	configDir := flags.StringP("config", "c", ".", "directory containing "+config.FileName)
	commands := flags.StringArrayP("exec", "e", nil, "run a console command and exit (repeatable)")
	version := flags.BoolP("version", "v", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Fprintf(out, "%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// load config
	configErr := config.Load(*configDir)

	// log file
	var logFile io.Writer
	f, err := logging.OpenSessionLog(viper.GetString("logsDir"), time.Now())
	if err != nil {
		fmt.Fprintf(out, "Logging to stdout: %v\n", err)
	} else {
		defer f.Close()
		logFile = f
	}

	var ctrl *controller.Controller
	logOpts := []logging.Option{
		logging.WithSession(func() (logging.Session, bool) {
			if ctrl == nil {
				return logging.Session{}, false
			}
			st := ctrl.Status()
			return logging.Session{
				Floor:     st.Floor,
				Capturing: st.Mode == workflow.ModeCapturing,
				CaptureID: st.Session,
			}, true
		}),
	}
	if viper.GetBool("graylog.enabled") {
		gw, err := logging.NewGELFWriter(viper.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(out, "Graylog disabled: %v\n", err)
		} else {
			defer gw.Close()
			logOpts = append(logOpts, logging.WithGELF(gw, AppName))
		}
	}

	slogManager := logging.NewSlogManager()
	slogManager.Setup(logFile, viper.GetString("logLevel"), logOpts...)
	logger := slogManager.Logger()

	zlOut := io.Discard
	if logFile != nil {
		zlOut = logFile
	}
	zl := logging.NewZerolog(zlOut, viper.GetString("logLevel"))

	if configErr != nil {
		logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}
	logger.Info("Starting up", "version", CurrentVersion, "build", BuildDate)

	bus, err := events.New(logging.NewEventLogger(zl))
	if err != nil {
		logger.Error("Failed to create event bus", "error", err)
		return 1
	}
	defer bus.Close()

	storageCfg := config.GetStorageConfig()
	backend, err := initStorage(storageCfg, zl, logger)
	if err != nil {
		fmt.Fprintf(out, "Storage unavailable: %v\n", err)
		return 1
	}
	defer backend.Close()

	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		sink := telemetry.New(influxCfg, logger)
		// drain buffered subscribers before the client goes away
		defer func() {
			bus.Close()
			sink.Close()
		}()
		if err := sink.Connect(ctx); err != nil {
			logger.Warn("Capture telemetry disabled", "error", err)
		} else {
			sink.Subscribe(bus)
			logger.Info("Capture telemetry enabled", "url", influxCfg.URL(), "bucket", influxCfg.Bucket)
		}
	}

	ctrl, err = buildController(ctx, backend, bus, logger, out)
	if err != nil {
		fmt.Fprintf(out, "Startup failed: %v\n", err)
		return 1
	}

	cons := newConsole(ctrl, out)
	if len(*commands) > 0 {
		for _, line := range *commands {
			if errors.Is(cons.Execute(ctx, line), errQuit) {
				break
			}
		}
		return 0
	}

	fmt.Fprintf(out, "%s %s, type help for commands\n", AppName, CurrentVersion)
	if err := cons.Run(ctx, in); err != nil {
		logger.Error("Console stopped", "error", err)
		return 1
	}
	logger.Info("Shutting down")
	return 0
}

// buildController loads every floor from storage and wires the core.
func buildController(ctx context.Context, backend storage.Backend, bus *events.Bus, logger *slog.Logger, out io.Writer) (*controller.Controller, error) {
	floorCfg := config.GetFloorConfig()
	palette, err := scene.ParsePalette(floorCfg.Palette)
	if err != nil {
		logger.Warn("Invalid floor palette, using defaults", "error", err)
		palette = scene.DefaultPalette()
	}

	images := make([]string, len(floorCfg.Images))
	for i, img := range floorCfg.Images {
		images[i] = filepath.Clean(img)
	}

	reg := registry.New(registry.Dependencies{
		Palette:   palette,
		Images:    images,
		HitRadius: config.GetFloat("markers.radius"),
		Publisher: bus,
		Logger:    logger,
	})
	if err := reg.Load(ctx, floorCfg.Count, backend.QueryLocations); err != nil {
		return nil, err
	}

	viewport, err := view.New(config.GetInt("view.zoom"))
	if err != nil {
		logger.Warn("Invalid zoom in config, using full size", "error", err)
		viewport, _ = view.New(view.MaxZoom)
	}

	wf := workflow.New(workflow.Dependencies{
		Store:     backend,
		Publisher: bus,
		Logger:    logger,
		Timeout:   config.GetStorageConfig().Timeout,
	})

	deps := controller.Dependencies{
		Registry: reg,
		Viewport: viewport,
		Workflow: wf,
		Bus:      bus,
		Detail:   &detailView{out: out, reg: reg},
		Notifier: printMessage(out),
		Logger:   logger,
	}
	if b, ok := backend.(storage.Backupable); ok {
		deps.Backup = b
	}
	return controller.New(deps)
}
