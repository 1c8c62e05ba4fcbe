package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/gotd/td/tgerr"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// ErrNotRunning is returned when the platform is used outside Client.Run.
var ErrNotRunning = errors.New("telegram: client is not running")

// unresolvable lists RPC errors meaning the peer does not exist or the
// account cannot see it.
var unresolvable = []string{
	"USERNAME_NOT_OCCUPIED",
	"USERNAME_INVALID",
	"CHANNEL_PRIVATE",
	"CHANNEL_INVALID",
	"CHANNEL_PUBLIC_GROUP_NA",
	"CHAT_ID_INVALID",
	"CHAT_FORBIDDEN",
	"PEER_ID_INVALID",
	"USER_BANNED_IN_CHANNEL",
}

// unauthorized lists RPC errors meaning the session is no longer valid.
var unauthorized = []string{
	"AUTH_KEY_UNREGISTERED",
	"AUTH_KEY_INVALID",
	"SESSION_REVOKED",
	"SESSION_EXPIRED",
	"USER_DEACTIVATED",
}

// translate maps a gotd error into the domain taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if d, ok := tgerr.AsFloodWait(err); ok {
		return domain.NewRetryableError(d, fmt.Errorf("%s: %w", op, err))
	}
	if tgerr.Is(err, unresolvable...) {
		return fmt.Errorf("%w: %s: %w", domain.ErrSourceUnresolvable, op, err)
	}
	if tgerr.Is(err, unauthorized...) {
		return fmt.Errorf("%w: %s: %w", domain.ErrSessionUnauthorized, op, err)
	}

	var rpcErr *tgerr.Error
	if errors.As(err, &rpcErr) && rpcErr.Code >= 500 {
		return domain.NewRetryableError(0, fmt.Errorf("%s: %w", op, err))
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.NewRetryableError(0, fmt.Errorf("%s: %w", op, err))
	}

	return fmt.Errorf("telegram: %s: %w", op, err)
}
