// Command simulator plays dart sessions on the terminal without Telegram.
package main

import (
	"context"
	"dartboard/domain/dart"
	"dartboard/runtime"
	"dartboard/runtime/workers"
	"dartboard/scheduler"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

type Config struct {
	Room              int64         `envconfig:"SIM_ROOM" default:"1"`
	FlushDelay        time.Duration `envconfig:"SIM_FLUSH_DELAY" default:"2500ms"`
	SuppressThreshold int           `envconfig:"SIM_SUPPRESS_THRESHOLD" default:"100"`
	LogLevel          string        `envconfig:"SIM_LOG_LEVEL" default:"WARN"`
	// SIM_COLOURS enables colorized output
	Colours bool `envconfig:"SIM_COLOURS" default:"true"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	console := NewConsole(os.Stdout, config.Colours)
	sup := workers.NewSupervisor(log, workers.DefaultRestartInterval)
	orchestrator := runtime.NewOrchestrator(
		log, sup, scheduler.NewTimerScheduler(), console,
		64, time.Second, time.Hour,
		dart.WithFlushDelay(config.FlushDelay),
		dart.WithSuppressThreshold(config.SuppressThreshold),
		dart.WithMentioner(dart.MentionAt),
	)
	orchestrator.AddSource(NewPrompt(
		os.Stdin, console, orchestrator.Submitter(), orchestrator.Registry(),
		dart.RoomID(config.Room), orchestrator.Stop,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console.Info(helpText)
	return orchestrator.Start(ctx)
}
