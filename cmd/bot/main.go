package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/haruquant/swingrisk/internal/config"
	"github.com/haruquant/swingrisk/internal/engine"
	"github.com/haruquant/swingrisk/internal/exchange"
	"github.com/haruquant/swingrisk/internal/exchange/bybit"
	"github.com/haruquant/swingrisk/internal/logger"
	"github.com/haruquant/swingrisk/internal/monitoring"
	"github.com/haruquant/swingrisk/internal/notifications"
	"github.com/haruquant/swingrisk/internal/recorder"
	"github.com/haruquant/swingrisk/internal/risk"
	"github.com/haruquant/swingrisk/internal/scheduler"
	"github.com/haruquant/swingrisk/internal/sizing"
	"github.com/haruquant/swingrisk/internal/swing"
	"github.com/haruquant/swingrisk/pkg/reporting"
)

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "Configuration file path")
		envFile    = flag.String("env", ".env", "Environment file path (default: .env)")
		runNow     = flag.Bool("run-now", false, "Run one decision cycle immediately on start")
	)
	flag.Parse()

	// Load environment variables from .env file
	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	fmt.Println("🚀 Swing Risk Engine Starting...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fileLog, err := logger.NewLogger("swingrisk", cfg.Signal.Timeframe)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer fileLog.Close()

	client := bybit.NewClient(bybit.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Demo:      cfg.Exchange.Demo,
	})
	provider := bybit.NewProvider(client)
	fileLog.Info("exchange environment: %s", client.GetEnvironment())

	eng := engine.New(engineConfig(cfg), provider, provider, fileLog)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sqlRec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open recorder database: %v", err)
		}
		rec = sqlRec
	}
	defer rec.Close()

	var notifier notifications.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = notifications.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	console := reporting.NewConsoleReporter()
	console.PrintStartupInfo(cfg.Symbols, cfg.Signal.Timeframe,
		cfg.Sizing.RiskPct, cfg.Risk.Threshold, cfg.Risk.Confidence)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := monitoring.NewHealthChecker()
	go serveMonitoring(cfg.Monitoring.ListenAddr, health)

	sched := scheduler.NewScheduler(ctx, eng, notifier, rec, health)
	sched.Console = console
	if err := sched.Register(cfg.Schedule.CycleCron); err != nil {
		log.Fatalf("Failed to register cycle schedule: %v", err)
	}
	sched.Start()

	if cfg.Schedule.UseStream {
		stream, err := startBarStream(ctx, cfg, sched)
		if err != nil {
			log.Fatalf("Failed to start bar stream: %v", err)
		}
		defer stream.Close()
	}

	if *runNow || cfg.Schedule.RunOnStart {
		sched.RunCycleNow()
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n🛑 Shutdown signal received...")
	sched.Stop()
	cancel()

	if cfg.Report.ExcelPath != "" {
		decisions, cycles := sched.Session()
		if err := reporting.NewExcelReporter().WriteSessionXLSX(decisions, cycles, cfg.Report.ExcelPath); err != nil {
			log.Printf("Failed to write session report: %v", err)
		} else {
			fmt.Printf("📊 Session report written to %s\n", cfg.Report.ExcelPath)
		}
	}

	time.Sleep(500 * time.Millisecond)
	fmt.Println("✅ Engine stopped")
}

// startBarStream subscribes to kline confirmations for every configured
// symbol and runs one cycle per closed bar of the signal timeframe. Events
// from the remaining symbols of the same bar are absorbed by the debounce.
func startBarStream(ctx context.Context, cfg *config.Config, sched *scheduler.Scheduler) (*exchange.BarStream, error) {
	url := "wss://stream.bybit.com/v5/public/linear"
	stream := exchange.NewBarStream(url)
	if err := stream.Connect(); err != nil {
		return nil, err
	}
	for _, symbol := range cfg.Symbols {
		if err := stream.Subscribe(symbol, cfg.Signal.Timeframe); err != nil {
			stream.Close()
			return nil, err
		}
	}

	go func() {
		var lastBar time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-stream.Events():
				if !ok {
					return
				}
				if ev.Timeframe != cfg.Signal.Timeframe || !ev.Start.After(lastBar) {
					continue
				}
				lastBar = ev.Start
				sched.RunCycleNow()
			}
		}
	}()
	return stream, nil
}

// engineConfig translates the loaded YAML config into the engine's wiring.
func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		Symbols:         cfg.Symbols,
		SignalTimeframe: cfg.Signal.Timeframe,
		HistoryBars:     cfg.Signal.HistoryBars,
		Workers:         cfg.Workers,
		Swing: swing.Config{
			Variant:          swing.Variant(cfg.Signal.Variant),
			OscillatorPeriod: cfg.Signal.OscillatorPeriod,
			UpperThreshold:   cfg.Signal.UpperThreshold,
			LowerThreshold:   cfg.Signal.LowerThreshold,
			BreakoutLookback: cfg.Signal.BreakoutLookback,
		},
		SignalMode: swing.Mode(cfg.Signal.Mode),
		ATRPeriod:  cfg.Signal.ATRPeriod,
		Risk: risk.Config{
			VolatilityPeriod:  cfg.Risk.VolatilityPeriod,
			CorrelationPeriod: cfg.Risk.CorrelationPeriod,
			Confidence:        cfg.Risk.Confidence,
		},
		Sizing: sizing.Config{
			ADRPeriod:     cfg.Sizing.ADRPeriod,
			StopADRRatio:  cfg.Sizing.StopADRRatio,
			RiskPct:       cfg.Sizing.RiskPct,
			RiskThreshold: cfg.Risk.Threshold,
		},
	}
}

func serveMonitoring(addr string, health *monitoring.HealthChecker) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)

	log.Printf("[INFO] monitoring server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[ERROR] monitoring server: %v", err)
	}
}
