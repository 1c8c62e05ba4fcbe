package telegram

import (
	"context"
	"errors"
)

// connection is a Run kept open in the background.
type connection struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Connect keeps the session connected in the background until Disconnect
// and returns once it is authorized. Calling it while connected is a no-op;
// a dropped connection is re-established.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		select {
		case <-c.conn.done:
			c.conn = nil
		default:
			return nil
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	conn := &connection{cancel: cancel, done: make(chan struct{})}
	ready := make(chan struct{})

	go func() {
		defer close(conn.done)
		conn.err = c.Run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return nil
		})
	}()

	select {
	case <-ready:
		c.conn = conn
		return nil
	case <-conn.done:
		cancel()
		return conn.err
	case <-ctx.Done():
		cancel()
		<-conn.done
		return ctx.Err()
	}
}

// Disconnect closes a connection opened by Connect.
func (c *Client) Disconnect() error {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn == nil {
		return nil
	}
	conn.cancel()
	<-conn.done
	if errors.Is(conn.err, context.Canceled) {
		return nil
	}
	return conn.err
}

// Session connects if needed and runs fn. It matches the session runner
// the driving adapters take.
func (c *Client) Session(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return fn(ctx)
}
