package telegram

import (
	"context"
	"dartboard/contract"
	"dartboard/errors"
	stderrors "errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateSource is the long-polling side of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller receives updates and submits the commands they carry.
type Poller struct {
	log         *slog.Logger
	source      UpdateSource
	submitter   contract.Submitter
	emoji       string
	pollTimeout int
}

func NewPoller(log *slog.Logger, source UpdateSource, submitter contract.Submitter, emoji string, pollTimeout int) *Poller {
	if emoji == "" {
		emoji = DefaultDartEmoji
	}
	return &Poller{
		log:         log,
		source:      source,
		submitter:   submitter,
		emoji:       emoji,
		pollTimeout: pollTimeout,
	}
}

func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.pollTimeout
	updates := p.source.GetUpdatesChan(u)
	defer p.source.StopReceivingUpdates()

	p.log.Info("Polling Telegram updates", "timeout", p.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("telegram updates channel closed")
			}
			p.handle(update)
		}
	}
}

func (p *Poller) handle(update tgbotapi.Update) {
	cmd, ok := Translate(update, p.emoji)
	if !ok {
		return
	}
	if err := p.submitter.Submit(cmd); err != nil {
		level := slog.LevelWarn
		if stderrors.Is(err, errors.ErrStopped) {
			level = slog.LevelDebug
		}
		p.log.Log(context.Background(), level, "Command not submitted",
			"room", cmd.RoomID(), "update", update.UpdateID, "error", err)
	}
}
