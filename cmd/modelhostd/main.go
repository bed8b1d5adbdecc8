package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modelhostd/internal/cache"
	"modelhostd/internal/capability"
	"modelhostd/internal/common/fsutil"
	"modelhostd/internal/config"
	"modelhostd/internal/device"
	"modelhostd/internal/httpapi"
	"modelhostd/internal/llm"
	"modelhostd/internal/manager"
	"modelhostd/internal/registry"
	"modelhostd/internal/scale"
	"modelhostd/pkg/types"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func buildRootCmd() *cobra.Command {
	var (
		cfgPath     string
		addr        string
		modelsDir   string
		presetsFile string
		maxModels   int
		ttlSeconds  int
		logLevel    string
		corsOrigins []string
	)

	root := &cobra.Command{
		Use:           "modelhostd",
		Short:         "Model lifecycle daemon: loads, caches and serves AI models per modality",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{}
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			// Flags win over the config file.
			if cmd.Flags().Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("models-dir") || cfg.ModelsDir == "" {
				cfg.ModelsDir = modelsDir
			}
			if cmd.Flags().Changed("presets") || cfg.PresetsFile == "" {
				cfg.PresetsFile = presetsFile
			}
			if cmd.Flags().Changed("cache-max-models") || cfg.CacheMaxModels == 0 {
				cfg.CacheMaxModels = maxModels
			}
			if cmd.Flags().Changed("cache-ttl-seconds") || cfg.CacheTTLSeconds == 0 {
				cfg.CacheTTLSeconds = ttlSeconds
			}
			if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.CORSOrigins = corsOrigins
			}
			return run(cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", os.Getenv("MODELHOSTD_CONFIG"), "Path to a yaml/json/toml config file")
	root.Flags().StringVar(&addr, "addr", envOr("MODELHOSTD_ADDR", ":8090"), "HTTP listen address, e.g. :8090")
	root.Flags().StringVar(&modelsDir, "models-dir", envOr("MODELHOSTD_MODELS_DIR", "~/models"), "Directory holding *.gguf model files")
	root.Flags().StringVar(&presetsFile, "presets", os.Getenv("MODELHOSTD_PRESETS"), "YAML file of preset aliases merged over the built-ins")
	root.Flags().IntVar(&maxModels, "cache-max-models", 8, "Maximum models kept in the cache before LRU eviction")
	root.Flags().IntVar(&ttlSeconds, "cache-ttl-seconds", 0, "Cache entry TTL in seconds (0 = no expiry)")
	root.Flags().StringVar(&logLevel, "log-level", envOr("MODELHOSTD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	root.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable); empty disables CORS")

	root.AddCommand(buildModelsCmd())

	return root
}

func run(cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	presets, err := registry.Load(cfg.PresetsFile)
	if err != nil {
		return err
	}
	modelsDir, err := fsutil.ExpandHome(cfg.ModelsDir)
	if err != nil {
		return err
	}
	if !fsutil.PathExists(modelsDir) {
		log.Warn().Str("dir", modelsDir).Msg("models directory does not exist")
	}

	det := capability.NewDetector(nil)
	dev := device.NewSelector(det)
	scaler := scale.New(det, dev, log)
	mc := cache.New(cache.Config{
		MaxModels: cfg.CacheMaxModels,
		TTL:       time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Logger:    log,
	})

	mgr := manager.New(manager.Config{
		Cache:        mc,
		Capabilities: det,
		Devices:      dev,
		Scaler:       scaler,
		Presets:      presets,
		Constructors: map[types.Modality]types.Constructor{
			types.ModalityLLM: llm.NewConstructor(modelsDir, dev),
		},
		Logger: log,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log)
	httpapi.SetCORSOrigins(cfg.CORSOrigins)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mgr)}

	errCh := make(chan error, 1)
	go func() {
		caps := det.Detect()
		log.Info().
			Str("addr", cfg.Addr).
			Str("models_dir", modelsDir).
			Bool("llama_built", llm.Built).
			Uint64("memory_bytes", caps.TotalMemoryBytes).
			Msg("modelhostd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Info().Msg("shutting down")
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	if err := mgr.Dispose(ctx); err != nil {
		log.Warn().Err(err).Msg("dispose manager")
	}
	return nil
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "modelhostd:", err)
		os.Exit(1)
	}
}
