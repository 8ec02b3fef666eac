package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrescamacho/helmsman/internal/adapters/api"
	"github.com/andrescamacho/helmsman/internal/adapters/metrics"
	"github.com/andrescamacho/helmsman/internal/adapters/persistence"
	"github.com/andrescamacho/helmsman/internal/app"
	"github.com/andrescamacho/helmsman/internal/domain/game"
	"github.com/andrescamacho/helmsman/internal/domain/ports"
	"github.com/andrescamacho/helmsman/internal/domain/shared"
	"github.com/andrescamacho/helmsman/internal/engine"
	"github.com/andrescamacho/helmsman/internal/handlers"
	"github.com/andrescamacho/helmsman/internal/infrastructure/config"
	"github.com/andrescamacho/helmsman/internal/infrastructure/database"
	"github.com/andrescamacho/helmsman/internal/infrastructure/logging"
	"github.com/andrescamacho/helmsman/internal/strategies"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot: worker loop plus interactive prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	clock := shared.NewRealClock()
	state := game.NewState()
	queue := engine.NewEventQueue(clock, log)

	var store ports.Store
	if cfg.Database.Type != "none" {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer database.Close(db) //nolint:errcheck
		store = persistence.NewGormStore(db)
	} else {
		log.Info("persistence disabled")
	}

	client := api.NewClient(cfg.API.Token, log,
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithRateLimit(cfg.API.RateLimit.Requests, cfg.API.RateLimit.Burst),
		api.WithRetries(cfg.API.Retry.MaxAttempts, cfg.API.Retry.BackoffBase))

	params := &app.Params{
		Queue: queue,
		State: state,
		API:   client,
		Store: store,
		Clock: clock,
		Log:   log,
	}

	registry := engine.NewRegistry(log)
	handlers.NewShipHandler(params).Register(registry)
	handlers.NewContractHandler(params).Register(registry)
	handlers.NewAgentHandler(params).Register(registry)
	handlers.NewSystemHandler(params).Register(registry)
	handlers.NewViewHandler(params).Register(registry)
	strategies.NewRegistry(params).Register(registry)

	var workerMetrics engine.Metrics = engine.NopMetrics{}
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		go collector.Serve(cfg.Metrics.Address, log)
		workerMetrics = collector
	}

	worker := engine.NewWorker(queue, registry, clock, workerMetrics, log)
	worker.SetPacing(cfg.Engine.EmptyTimeout, cfg.Engine.Pace)

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run()
	}()

	// With a token configured, warm the state before any command runs.
	if cfg.API.Token != "" {
		queue.PutNew(engine.TypeAgent, "fetch", nil)
		queue.PutNew(engine.TypeShip, "fetch_all", nil)
		queue.PutNew(engine.TypeContract, "fetch_all", nil)
	}

	loadAutorun(cfg.Engine.AutorunPath, queue, log)

	// An interrupt becomes a regular exit event so the worker drains in
	// its own time.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		queue.PutNew(engine.TypeDefault, engine.ExitEvent, nil)
	}()

	repl(queue, registry, log)

	<-done
	return nil
}

// repl reads commands until exit or EOF. View and strategy commands run
// synchronously on this thread; everything else goes through the worker.
func repl(queue *engine.EventQueue, registry *engine.Registry, log *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			fmt.Print("> ")
			continue
		}

		spec, err := ParseCommand(line)
		if err != nil {
			fmt.Printf("!! %v\n> ", err)
			continue
		}

		if spec.Type == engine.TypeDefault && spec.Name == engine.ExitEvent {
			queue.Put(queue.NewEvent(spec.Type, spec.Name, spec.Payload))
			return
		}

		if spec.Type == engine.TypeView || spec.Type == engine.TypeStrategy {
			result := registry.Dispatch(queue.NewEvent(spec.Type, spec.Name, spec.Payload))
			if result == engine.ResultFail {
				fmt.Println("!! command failed")
			}
			fmt.Print("> ")
			continue
		}

		id := queue.Put(queue.NewEvent(spec.Type, spec.Name, spec.Payload))
		fmt.Printf("=> queued #%d\n> ", id)
	}

	// EOF on stdin: shut down cleanly.
	log.Info("input closed, shutting down")
	queue.PutNew(engine.TypeDefault, engine.ExitEvent, nil)
}

// loadAutorun pushes the startup command file onto the queue, one event
// per line; blank lines and #-comments are skipped.
func loadAutorun(path string, queue *engine.EventQueue, log *zap.Logger) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("autorun read failed", zap.String("path", path), zap.Error(err))
		}
		return
	}

	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		spec, err := ParseCommand(line)
		if err != nil {
			log.Warn("autorun line skipped", zap.String("line", line), zap.Error(err))
			continue
		}
		queue.Put(queue.NewEvent(spec.Type, spec.Name, spec.Payload))
		count++
	}
	if count > 0 {
		log.Info("autorun loaded", zap.String("path", path), zap.Int("commands", count))
	}
}
