package telegram

import (
	"context"
	"log"
	"time"
)

// Poller drives the long-poll loop and hands each update to the handler
// in its own goroutine, so one slow conversation never blocks another
// chat's messages.
type Poller struct {
	Client  *Client
	Offsets OffsetStore
	Timeout time.Duration
}

func NewPoller(c *Client, offsets OffsetStore) *Poller {
	if offsets == nil {
		offsets = &MemoryOffsetStore{}
	}
	return &Poller{
		Client:  c,
		Offsets: offsets,
		Timeout: 50 * time.Second,
	}
}

// Run polls until ctx is cancelled. Poll errors are logged and retried
// after a short pause; only cancellation stops the loop.
func (p *Poller) Run(ctx context.Context, handle func(ctx context.Context, upd Update)) error {
	offset, err := p.Offsets.GetOffset(ctx)
	if err != nil {
		return err
	}

	for {
		updates, err := p.Client.GetUpdates(ctx, offset, p.Timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("getUpdates: %v", err)
			select {
			case <-time.After(3 * time.Second):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			go handle(ctx, upd)
		}

		if len(updates) > 0 {
			if err := p.Offsets.SetOffset(ctx, offset); err != nil {
				log.Printf("checkpoint offset: %v", err)
			}
		}
	}
}
