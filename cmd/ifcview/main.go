package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ifcquery/ifcview/internal/blob"
	"github.com/ifcquery/ifcview/internal/config"
	"github.com/ifcquery/ifcview/internal/core/ecs"
	"github.com/ifcquery/ifcview/internal/core/event"
	coresys "github.com/ifcquery/ifcview/internal/core/system"
	"github.com/ifcquery/ifcview/internal/data"
	"github.com/ifcquery/ifcview/internal/handler"
	"github.com/ifcquery/ifcview/internal/metrics"
	gonet "github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
	"github.com/ifcquery/ifcview/internal/persist"
	"github.com/ifcquery/ifcview/internal/scene"
	"github.com/ifcquery/ifcview/internal/scripting"
	"github.com/ifcquery/ifcview/internal/system"
	"github.com/ifcquery/ifcview/internal/viewer"
	"github.com/ifcquery/ifcview/internal/watch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Console output ────────────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Printf("  \033[36m%s\033[0m  \033[90mheadless IFC viewer\033[0m\n", name)
	fmt.Println()
}

func printSection(title string) {
	lineLen := 44 - len(title)
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printSkip(msg string) {
	fmt.Printf("  \033[90m-\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main viewer logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/ifcview.toml"
	if p := os.Getenv("IFCVIEW_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if err := packet.SetCharset(cfg.Control.Charset); err != nil {
		return fmt.Errorf("control charset: %w", err)
	}

	printBanner(cfg.Viewer.Name)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Journal
	printSection("Journal")
	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	journal, err := persist.Open(bootCtx, cfg.Journal, log)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	sessionID := uuid.New()
	if journal != nil {
		defer journal.Close()
		host, _ := os.Hostname()
		if err := journal.StartSession(bootCtx, persist.Session{
			ID:         sessionID,
			ViewerName: cfg.Viewer.Name,
			Host:       host,
			StartedAt:  time.Unix(cfg.Viewer.StartTime, 0),
		}); err != nil {
			return fmt.Errorf("journal session: %w", err)
		}
		printOK(fmt.Sprintf("%s journal ready (session %s)", cfg.Journal.Driver, sessionID))
	} else {
		printSkip("journal disabled")
	}
	fmt.Println()

	// 4. Model source and shared data
	printSection("Data")
	src, err := blob.Open(bootCtx, blob.Config{
		Driver: cfg.Blob.Driver,
		Root:   cfg.Blob.Root,
		S3: blob.S3Config{
			Bucket:          cfg.Blob.Bucket,
			Prefix:          cfg.Blob.Prefix,
			Region:          cfg.Blob.Region,
			Endpoint:        cfg.Blob.Endpoint,
			AccessKeyID:     cfg.Blob.AccessKeyID,
			SecretAccessKey: cfg.Blob.SecretAccessKey,
			PathStyle:       cfg.Blob.PathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("model source: %w", err)
	}
	models, err := src.List(bootCtx, "")
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	printStat(fmt.Sprintf("models (%s)", src.Driver()), len(models))

	var materials *data.MaterialTable
	if cfg.Viewer.Materials != "" {
		materials, err = data.LoadMaterialTable(cfg.Viewer.Materials)
		if err != nil {
			return fmt.Errorf("load materials: %w", err)
		}
	}
	printStat("shared materials", materials.Count())

	var engine *scripting.Engine
	if cfg.Scripting.Dir != "" {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, log.Named("lua"))
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		printOK(fmt.Sprintf("Lua scripts loaded from %s", cfg.Scripting.Dir))
	}
	fmt.Println()

	// 5. Viewer
	world := ecs.NewWorld()
	bus := event.NewBus()
	v := viewer.New(bus, world, src, viewer.Options{
		HistoryLimit: cfg.Viewer.HistoryLimit,
		Highlight:    scene.NewMaterial("selected", cfg.Viewer.Highlight),
		Materials:    materials,
	}, log.Named("viewer"))
	if engine != nil {
		system.ApplyScripts(v, engine)
	}

	// 6. Control protocol
	store := gonet.NewSessionStore()
	pktReg := packet.NewRegistry(log.Named("packet"))
	handler.RegisterAll(pktReg, &handler.Deps{
		Viewer:   v,
		Config:   cfg,
		Sessions: store,
		Log:      log.Named("handler"),
	})
	handler.SubscribeBroadcasts(bus, store)

	pktPerSec, authPerMin := 0, 0
	if cfg.RateLimit.Enabled {
		pktPerSec = cfg.RateLimit.PacketsPerSecond
		authPerMin = cfg.RateLimit.AuthAttemptsPerMinute
	}
	netServer, err := gonet.NewServer(cfg.Control.BindAddress, gonet.SessionOptions{
		InQueueSize:      cfg.Control.InQueueSize,
		OutQueueSize:     cfg.Control.OutQueueSize,
		ReadTimeout:      cfg.Control.ReadTimeout,
		WriteTimeout:     cfg.Control.WriteTimeout,
		PacketsPerSecond: pktPerSec,
		AuthPerMinute:    authPerMin,
	}, log.Named("net"))
	if err != nil {
		return fmt.Errorf("control server: %w", err)
	}
	go netServer.AcceptLoop()

	// 7. Metrics
	m := metrics.New()
	if cfg.Metrics.Enabled {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.BindAddress, log.Named("metrics")); err != nil {
				log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	// 8. File watching
	var changes <-chan string
	fsSrc, _ := src.(*blob.Filesystem)
	if (cfg.Viewer.Watch && fsSrc != nil) || (cfg.Scripting.Watch && engine != nil) {
		w, err := watch.New(0, log.Named("watch"))
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		if cfg.Viewer.Watch && fsSrc != nil {
			if err := w.Add(fsSrc.Root()); err != nil {
				return fmt.Errorf("watch models: %w", err)
			}
		}
		if cfg.Scripting.Watch && engine != nil {
			for _, sub := range []string{"core", "keys", "style"} {
				dir := filepath.Join(engine.Dir(), sub)
				if _, err := os.Stat(dir); err != nil {
					continue
				}
				if err := w.Add(dir); err != nil {
					return fmt.Errorf("watch scripts: %w", err)
				}
			}
		}
		changes = w.Changes()
		go w.Run(ctx)
	}

	// 9. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, store, cfg.Control.MaxPacketsPerTick, m, log.Named("input")))
	if changes != nil {
		var paths system.ModelPaths
		if fsSrc != nil {
			paths = fsSrc
		}
		runner.Register(system.NewReloadSystem(changes, v, engine, paths, log.Named("reload")))
	}
	runner.Register(system.NewEventSystem(bus, log.Named("events")))
	runner.Register(system.NewMetricsSystem(v, store, m))
	runner.Register(system.NewOutputSystem(store))
	var journalSys *system.JournalSystem
	if journal != nil {
		interval := int(cfg.Journal.FlushInterval / cfg.Viewer.TickRate)
		journalSys = system.NewJournalSystem(journal, v, sessionID, interval, log.Named("journal"))
		runner.Register(journalSys)
	}
	runner.Register(system.NewCleanupSystem(world, log.Named("cleanup")))

	// 10. Initial model
	if cfg.Viewer.Model != "" {
		if err := v.LoadModel(bootCtx, cfg.Viewer.Model); err != nil {
			log.Warn("initial model not loaded", zap.String("key", cfg.Viewer.Model), zap.Error(err))
		}
	}

	// 11. Start loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Viewer.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	if info := v.Model(); info != nil {
		printStat(fmt.Sprintf("entities in %s", info.Key), info.Entities)
	}
	printReady(fmt.Sprintf("control socket %s", netServer.Addr().String()))
	if cfg.Metrics.Enabled {
		printReady(fmt.Sprintf("metrics http://%s/metrics", cfg.Metrics.BindAddress))
	}
	printReady(fmt.Sprintf("loop running (tick: %s)", cfg.Viewer.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			system.TickTimer(m, func() { runner.Tick(cfg.Viewer.TickRate) })
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			netServer.Shutdown()
			// Deliver the last events so the journal sees them.
			runner.TickPhase(coresys.PhasePreUpdate, cfg.Viewer.TickRate)
			if journalSys != nil {
				if err := journalSys.Flush(); err != nil {
					log.Error("final journal flush failed", zap.Error(err))
				}
			}
			stop()
			log.Info("viewer stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
