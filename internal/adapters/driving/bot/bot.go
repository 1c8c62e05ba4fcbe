// Package bot is the Telegram bot front end: users connect sources, search
// and list their files with slash commands, and media posted where the bot
// is a member is handed to the live listener.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
	"github.com/custodia-labs/tgindex/internal/logger"
)

const (
	// DefaultResultLimit is the number of files listed per reply.
	DefaultResultLimit = 10

	// DefaultWorkers is the number of updates handled at once.
	DefaultWorkers = 4
)

// botAPI is the part of tgbotapi.BotAPI the bot uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Ports aggregates the driving ports the bot calls.
type Ports struct {
	Sources   driving.SourceRegistry
	Indexer   driving.Indexer
	Documents driving.DocumentService

	// Listener receives media posted in chats the bot belongs to. Optional.
	Listener driving.Listener
}

// Config tunes the bot.
type Config struct {
	// AllowedUsers restricts commands to these user ids. Empty allows everyone.
	AllowedUsers []int64

	// ResultLimit is the number of files listed per reply.
	ResultLimit int

	// Workers caps concurrently handled updates. Polling waits while all
	// workers are busy.
	Workers int
}

// Bot serves commands over the Bot API.
type Bot struct {
	api     botAPI
	ports   Ports
	allowed map[int64]bool
	limit   int
	workers int

	mu     sync.Mutex
	states map[int64]*conversation
}

// conversation tracks a command waiting for its argument in the next message.
type conversation struct {
	Command string
}

// New connects to the Bot API with token.
func New(token string, ports Ports, cfg Config) (*Bot, error) {
	if token == "" {
		return nil, errors.New("bot token is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting bot: %w", err)
	}
	logger.Info("Authorized bot @%s", api.Self.UserName)
	return newBot(api, ports, cfg)
}

func newBot(api botAPI, ports Ports, cfg Config) (*Bot, error) {
	if ports.Sources == nil || ports.Indexer == nil || ports.Documents == nil {
		return nil, errors.New("bot: sources, indexer and documents are required")
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	allowed := make(map[int64]bool, len(cfg.AllowedUsers))
	for _, id := range cfg.AllowedUsers {
		allowed[id] = true
	}

	return &Bot{
		api:     api,
		ports:   ports,
		allowed: allowed,
		limit:   cfg.ResultLimit,
		workers: cfg.Workers,
		states:  make(map[int64]*conversation),
	}, nil
}

// Run polls for updates until ctx is cancelled, then waits for the
// commands still being handled. At most Config.Workers updates are handled
// at once; receiving pauses while every worker is busy.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	var handlers errgroup.Group
	handlers.SetLimit(b.workers)
	defer func() { _ = handlers.Wait() }()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			handlers.Go(func() error {
				b.HandleUpdate(ctx, update)
				return nil
			})
		}
	}
}

// HandleUpdate dispatches one update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if post := update.ChannelPost; post != nil {
		b.ingest(ctx, post)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if !msg.Chat.IsPrivate() {
		b.ingest(ctx, msg)
		return
	}
	if msg.From == nil || !b.isAllowed(msg.From.ID) {
		return
	}
	b.handleCommand(ctx, msg)
}

func (b *Bot) isAllowed(userID int64) bool {
	return len(b.allowed) == 0 || b.allowed[userID]
}

// ingest hands a group or channel message carrying media to the listener.
func (b *Bot) ingest(ctx context.Context, m *tgbotapi.Message) {
	if b.ports.Listener == nil {
		return
	}
	msg, ok := convertMessage(m)
	if !ok {
		return
	}
	n, err := b.ports.Listener.HandleMessage(ctx, msg)
	if err != nil {
		logger.Warn("Live message %d in %d: %v", msg.ID, msg.PeerID, err)
	}
	if n > 0 {
		logger.Debug("Message %d in %d indexed for %d user(s)", msg.ID, msg.PeerID, n)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.DisableWebPagePreview = true
	if _, err := b.api.Send(out); err != nil {
		logger.Warn("Sending reply to %d: %v", chatID, err)
	}
}

func (b *Bot) setState(userID int64, command string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[userID] = &conversation{Command: command}
}

// takeState returns and clears the pending command of a user.
func (b *Bot) takeState(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[userID]
	if !ok {
		return ""
	}
	delete(b.states, userID)
	return st.Command
}
