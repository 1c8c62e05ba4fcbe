package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
	"github.com/custodia-labs/tgindex/internal/logger"
)

// DefaultPageSize is the number of messages requested per history call.
const DefaultPageSize = 100

// Config configures the user session client.
type Config struct {
	// APIID and APIHash identify the application.
	APIID   int
	APIHash string

	// SessionPath is the bolt file holding the authorized session.
	SessionPath string

	// RequestsPerSecond throttles API calls.
	RequestsPerSecond float64

	// PageSize is the number of messages per history request.
	PageSize int
}

// Client is the authorized user session. It implements driven.Platform; the
// platform methods are only usable inside Run.
type Client struct {
	cfg     Config
	store   *BoltStore
	limiter *RateLimiter
	client  *telegram.Client

	mu      sync.RWMutex
	api     *tg.Client
	handler driven.MessageHandler

	connMu sync.Mutex
	conn   *connection
}

var _ driven.Platform = (*Client)(nil)

// New opens the session file and prepares a client. It does not connect.
func New(cfg Config) (*Client, error) {
	if cfg.APIID <= 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("%w: telegram api_id and api_hash are required", domain.ErrInvalidInput)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	store, err := OpenBoltStore(cfg.SessionPath)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		store:   store,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
	}

	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		c.rememberEntities(e)
		c.dispatch(ctx, u.Message)
		return nil
	})
	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		c.rememberEntities(e)
		c.dispatch(ctx, u.Message)
		return nil
	})

	c.client = telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: store,
		UpdateHandler:  dispatcher,
		Middlewares:    []telegram.Middleware{c.limiter.Middleware()},
	})
	return c, nil
}

// Close disconnects and releases the session file.
func (c *Client) Close() error {
	return errors.Join(c.Disconnect(), c.store.Close())
}

// Run connects, checks the session is authorized and calls fn while the
// connection is up. It returns when fn returns or ctx is cancelled.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !c.store.HasSession() {
		return fmt.Errorf("%w: no session stored in %s", domain.ErrSessionUnauthorized, c.cfg.SessionPath)
	}

	return c.client.Run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return translate("checking authorization", err)
		}
		if !status.Authorized {
			return domain.ErrSessionUnauthorized
		}

		c.mu.Lock()
		c.api = c.client.API()
		c.mu.Unlock()
		defer func() {
			c.mu.Lock()
			c.api = nil
			c.mu.Unlock()
		}()

		logger.Debug("telegram session authorized")
		return fn(ctx)
	})
}

func (c *Client) rpc() (*tg.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.api == nil {
		return nil, ErrNotRunning
	}
	return c.api, nil
}

// OnNewMessage registers the handler for live messages.
func (c *Client) OnNewMessage(handler driven.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *Client) dispatch(ctx context.Context, m tg.MessageClass) {
	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return
	}

	msg, ok := convertMessage(m)
	if !ok {
		return
	}
	handler(ctx, msg)
}

// rememberEntities caches access hashes delivered with updates so the
// channels can be addressed later without resolving them.
func (c *Client) rememberEntities(e tg.Entities) {
	for _, ch := range e.Channels {
		if _, rec, ok := entityFromChat(ch); ok {
			if err := c.store.SavePeer(rec); err != nil {
				logger.Warn("caching peer %d: %v", ch.ID, err)
			}
		}
	}
}

// ResolveEntity looks up a channel or group by username, link or numeric id.
func (c *Client) ResolveEntity(ctx context.Context, identifier string) (*domain.Entity, error) {
	identifier = domain.NormaliseIdentifier(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: empty identifier", domain.ErrInvalidInput)
	}

	api, err := c.rpc()
	if err != nil {
		return nil, err
	}

	var rec peerRecord
	if id, ok := domain.ParsePeerID(identifier); ok {
		rec, err = c.resolveID(ctx, api, domain.BarePeerID(id))
	} else {
		rec, err = c.resolveUsername(ctx, api, identifier)
	}
	if err != nil {
		return nil, err
	}

	entity := rec.entity()
	return &entity, nil
}

func (c *Client) resolveUsername(ctx context.Context, api *tg.Client, username string) (peerRecord, error) {
	resolved, err := api.ContactsResolveUsername(ctx, username)
	if err != nil {
		return peerRecord{}, translate("resolving "+username, err)
	}

	want, _ := peerID(resolved.Peer)
	for _, chat := range resolved.Chats {
		_, rec, ok := entityFromChat(chat)
		if !ok || rec.ID != want {
			continue
		}
		if err := c.store.SavePeer(rec); err != nil {
			logger.Warn("caching peer %d: %v", rec.ID, err)
		}
		return rec, nil
	}
	// Users and bots resolve too, but they are not sources.
	return peerRecord{}, fmt.Errorf("%w: %s is not a channel or group", domain.ErrSourceUnresolvable, username)
}

func (c *Client) resolveID(ctx context.Context, api *tg.Client, id int64) (peerRecord, error) {
	rec, found, err := c.store.LoadPeer(id)
	if err != nil {
		return peerRecord{}, fmt.Errorf("loading peer: %w", err)
	}
	if found {
		return rec, nil
	}

	// Without a cached access hash only chats the account belongs to can be
	// looked up.
	chats, err := api.ChannelsGetChannels(ctx, []tg.InputChannelClass{&tg.InputChannel{ChannelID: id}})
	if err != nil {
		chats, err = api.MessagesGetChats(ctx, []int64{id})
	}
	if err != nil {
		return peerRecord{}, translate(fmt.Sprintf("resolving %d", id), err)
	}

	for _, chat := range chats.GetChats() {
		if _, rec, ok := entityFromChat(chat); ok && rec.ID == id {
			if err := c.store.SavePeer(rec); err != nil {
				logger.Warn("caching peer %d: %v", rec.ID, err)
			}
			return rec, nil
		}
	}
	return peerRecord{}, fmt.Errorf("%w: %d", domain.ErrSourceUnresolvable, id)
}

// peerFor returns the stored address of an entity, resolving it again when
// the cache has been lost.
func (c *Client) peerFor(ctx context.Context, api *tg.Client, entity domain.Entity) (peerRecord, error) {
	rec, found, err := c.store.LoadPeer(entity.ID)
	if err != nil {
		return peerRecord{}, fmt.Errorf("loading peer: %w", err)
	}
	if found {
		return rec, nil
	}
	if entity.Username != "" {
		return c.resolveUsername(ctx, api, entity.Username)
	}
	return c.resolveID(ctx, api, entity.ID)
}

// IterMessages opens a paged stream over an entity's history.
func (c *Client) IterMessages(ctx context.Context, entity domain.Entity, req domain.HistoryRequest) (driven.MessageIterator, error) {
	api, err := c.rpc()
	if err != nil {
		return nil, err
	}
	rec, err := c.peerFor(ctx, api, entity)
	if err != nil {
		return nil, err
	}
	return newHistoryIterator(historyFetcher(api, rec.inputPeer()), entity.ID, req, c.cfg.PageSize), nil
}

// historyFetcher binds messages.getHistory to one peer.
func historyFetcher(api *tg.Client, peer tg.InputPeerClass) fetchFunc {
	return func(ctx context.Context, p pageRequest) ([]tg.MessageClass, error) {
		res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:      peer,
			OffsetID:  p.OffsetID,
			AddOffset: p.AddOffset,
			Limit:     p.Limit,
			MinID:     p.MinID,
		})
		if err != nil {
			return nil, translate("fetching history", err)
		}
		return historyMessages(res)
	}
}

func historyMessages(res tg.MessagesMessagesClass) ([]tg.MessageClass, error) {
	switch v := res.(type) {
	case *tg.MessagesMessages:
		return v.Messages, nil
	case *tg.MessagesMessagesSlice:
		return v.Messages, nil
	case *tg.MessagesChannelMessages:
		return v.Messages, nil
	case *tg.MessagesMessagesNotModified:
		return nil, nil
	default:
		return nil, errors.New("unexpected history response")
	}
}
