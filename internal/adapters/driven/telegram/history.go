package telegram

import (
	"context"
	"sort"

	"github.com/gotd/td/tg"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// pageRequest is one messages.getHistory call.
type pageRequest struct {
	OffsetID  int
	AddOffset int
	Limit     int
	MinID     int
}

// fetchFunc performs one history call.
type fetchFunc func(ctx context.Context, p pageRequest) ([]tg.MessageClass, error)

// historyIterator pages through a chat's history on demand.
//
// Newest first, each page starts below the lowest id seen. Ascending (with
// a MinID) each page asks for the messages right above the highest id seen,
// with min_id pinned to it so nothing at or below the cursor comes back.
type historyIterator struct {
	fetch    fetchFunc
	peerID   int64
	limit    int
	pageSize int
	asc      bool

	cursor  int
	yielded int
	buf     []domain.Message
	done    bool
	err     error
}

func newHistoryIterator(fetch fetchFunc, peerID int64, req domain.HistoryRequest, pageSize int) *historyIterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &historyIterator{
		fetch:    fetch,
		peerID:   peerID,
		limit:    req.Limit,
		pageSize: pageSize,
		asc:      req.Ascending(),
		cursor:   req.MinID,
	}
}

// Next returns the next message, fetching a page when the buffer is empty.
func (it *historyIterator) Next(ctx context.Context) (domain.Message, bool) {
	if it.limit > 0 && it.yielded >= it.limit {
		return domain.Message{}, false
	}
	for len(it.buf) == 0 {
		if it.done || it.err != nil {
			return domain.Message{}, false
		}
		if err := ctx.Err(); err != nil {
			it.err = err
			return domain.Message{}, false
		}
		it.fill(ctx)
	}

	msg := it.buf[0]
	it.buf = it.buf[1:]
	it.yielded++
	return msg, true
}

// Err returns the error that stopped the stream.
func (it *historyIterator) Err() error {
	return it.err
}

func (it *historyIterator) fill(ctx context.Context) {
	size := it.pageSize
	if it.limit > 0 {
		size = min(size, it.limit-it.yielded)
	}

	req := pageRequest{OffsetID: it.cursor, Limit: size}
	if it.asc {
		req.AddOffset = -size
		req.MinID = it.cursor
	}

	raw, err := it.fetch(ctx, req)
	if err != nil {
		it.err = err
		return
	}
	if len(raw) == 0 {
		it.done = true
		return
	}

	page := make([]domain.Message, 0, len(raw))
	next := it.cursor
	for _, m := range raw {
		id := m.GetID()
		if it.asc {
			if id <= it.cursor {
				continue
			}
			next = max(next, id)
		} else {
			if it.cursor > 0 && id >= it.cursor {
				continue
			}
			if next == it.cursor || id < next {
				next = id
			}
		}

		msg, ok := convertMessage(m)
		if !ok {
			continue
		}
		if msg.PeerID == 0 {
			msg.PeerID = it.peerID
		}
		page = append(page, msg)
	}

	if next == it.cursor {
		// Nothing beyond the cursor: the history is exhausted.
		it.done = true
		return
	}
	it.cursor = next

	sort.Slice(page, func(i, j int) bool {
		if it.asc {
			return page[i].ID < page[j].ID
		}
		return page[i].ID > page[j].ID
	})
	it.buf = page
}
