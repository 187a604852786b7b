package main

import (
	"context"
	"dartboard/domain/dart"
	"dartboard/gateway/telegram"
	"dartboard/internal"
	"dartboard/runtime"
	"dartboard/runtime/workers"
	"dartboard/scheduler"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Telegram client
	bot, err := tgbotapi.NewBotAPI(config.TelegramToken)
	if err != nil {
		return fmt.Errorf("telegram login failed: %w", err)
	}
	log.Info("Authorized on Telegram", "account", bot.Self.UserName)

	// 3. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(
		log, sup, scheduler.NewTimerScheduler(),
		telegram.NewSender(bot, config.DartEmoji),
		config.BufferSize, config.SendTimeout, config.MetricInterval,
		dart.WithFlushDelay(config.FlushDelay),
		dart.WithSuppressThreshold(config.SuppressThreshold),
	)
	orchestrator.AddSource(telegram.NewPoller(
		log, bot, orchestrator.Submitter(), config.DartEmoji, config.PollTimeout,
	))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Blocks until a signal arrives
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed: %w", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}
