package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/logger"
)

const helpText = `Commands:
/connect <channel> - connect a channel or group and index its latest files
/search <text> - search your files by name or message text
/recent - list the latest files
/sources - list connected channels and groups
/reindex <channel> - index files posted since the last pass
/stats - count indexed files

Plain text is searched directly.`

// handleCommand answers a private message.
func (b *Bot) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	userID, chatID := m.From.ID, m.Chat.ID

	if !m.IsCommand() {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			return
		}
		switch b.takeState(userID) {
		case "connect":
			b.connect(ctx, userID, chatID, text)
		case "reindex":
			b.reindex(ctx, userID, chatID, text)
		default:
			b.search(ctx, userID, chatID, text)
		}
		return
	}

	args := strings.TrimSpace(m.CommandArguments())
	switch m.Command() {
	case "start":
		b.takeState(userID)
		b.reply(chatID, "Send me a channel to index with /connect, then search its files.\n\n"+helpText)
	case "help":
		b.reply(chatID, helpText)
	case "connect", "reindex", "search":
		if args == "" {
			b.setState(userID, m.Command())
			b.reply(chatID, prompt(m.Command()))
			return
		}
		b.takeState(userID)
		switch m.Command() {
		case "connect":
			b.connect(ctx, userID, chatID, args)
		case "reindex":
			b.reindex(ctx, userID, chatID, args)
		default:
			b.search(ctx, userID, chatID, args)
		}
	case "recent":
		b.recent(ctx, userID, chatID)
	case "sources":
		b.sources(ctx, userID, chatID)
	case "stats":
		b.stats(ctx, userID, chatID)
	default:
		b.reply(chatID, "Unknown command.\n\n"+helpText)
	}
}

func prompt(command string) string {
	switch command {
	case "connect":
		return "Send the username or link of the channel or group, for example @channel_name or https://t.me/channel_name."
	case "reindex":
		return "Send the username or link of the source to reindex."
	default:
		return "Send what you would like to search for."
	}
}

// connect registers a source on first use and runs its first pass. A source
// already connected is indexed from its watermark instead.
func (b *Bot) connect(ctx context.Context, userID, chatID int64, identifier string) {
	if domain.NormaliseIdentifier(identifier) == "" {
		b.reply(chatID, "Invalid channel or group name. Send a username (@example) or a link (https://t.me/example).")
		return
	}

	_, err := b.ports.Sources.Add(ctx, userID, identifier)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		b.reply(chatID, "Already connected, fetching new files.")
	case err != nil:
		b.reply(chatID, domain.UserMessage(err))
		return
	default:
		b.reply(chatID, "Connected. Fetching existing files, this may take a while.")
	}

	result, err := b.ports.Indexer.IndexSource(ctx, userID, identifier, 0)
	b.reply(chatID, indexSummary(result, err))
}

func (b *Bot) reindex(ctx context.Context, userID, chatID int64, identifier string) {
	if _, err := b.ports.Sources.Get(ctx, userID, identifier); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			b.reply(chatID, "That source is not connected. Use /connect first.")
			return
		}
		b.reply(chatID, domain.UserMessage(err))
		return
	}

	b.reply(chatID, "Reindexing, this may take a while.")
	result, err := b.ports.Indexer.Reindex(ctx, userID, identifier)
	b.reply(chatID, indexSummary(result, err))
}

func (b *Bot) search(ctx context.Context, userID, chatID int64, query string) {
	docs, err := b.ports.Documents.Search(ctx, userID, query, domain.SearchOptions{Limit: b.limit})
	if err != nil {
		logger.Warn("Search for user %d: %v", userID, err)
		b.reply(chatID, domain.UserMessage(err))
		return
	}
	if len(docs) == 0 {
		b.reply(chatID, fmt.Sprintf("No files found for %q.", query))
		return
	}
	b.reply(chatID, formatDocuments(fmt.Sprintf("Found %d result(s) for %q", len(docs), query), docs))
}

func (b *Bot) recent(ctx context.Context, userID, chatID int64) {
	docs, err := b.ports.Documents.Recent(ctx, userID, b.limit)
	if err != nil {
		b.reply(chatID, domain.UserMessage(err))
		return
	}
	if len(docs) == 0 {
		b.reply(chatID, "No files indexed yet. Use /connect to add a source.")
		return
	}
	b.reply(chatID, formatDocuments("Recent files", docs))
}

func (b *Bot) sources(ctx context.Context, userID, chatID int64) {
	sources, err := b.ports.Sources.List(ctx, userID)
	if err != nil {
		b.reply(chatID, domain.UserMessage(err))
		return
	}
	if len(sources) == 0 {
		b.reply(chatID, "You haven't connected any channels or groups yet. Use /connect to add a source.")
		return
	}
	b.reply(chatID, formatSources(sources))
}

func (b *Bot) stats(ctx context.Context, userID, chatID int64) {
	n, err := b.ports.Documents.Count(ctx, userID)
	if err != nil {
		b.reply(chatID, domain.UserMessage(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("%d file(s) indexed.", n))
}
