package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"replacement-request-service/internal/model"
)

// ErrReloadFailed marks a failed re-fetch after a mutation. It is reported
// distinctly from a mutation failure: the mutation may already be durable
// server-side even though the follow-up read failed.
var ErrReloadFailed = errors.New("order reload failed")

// Coordinator holds the latest known snapshot per order and refreshes it by
// full replacement. There is deliberately no field-level merge: the nested
// history and the derived status must always match server truth, including
// entries the server appended that this client never requested.
type Coordinator struct {
	client *Client

	mu        sync.RWMutex
	snapshots map[string]*model.Order
}

func NewCoordinator(c *Client) *Coordinator {
	return &Coordinator{
		client:    c,
		snapshots: make(map[string]*model.Order),
	}
}

// Reload fetches the full aggregate and swaps it in wholesale. Used both
// for the initial load and after every successful mutation.
func (co *Coordinator) Reload(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := co.client.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReloadFailed, err)
	}

	co.mu.Lock()
	co.snapshots[orderID] = order
	co.mu.Unlock()
	return order, nil
}

// Snapshot returns the last successfully loaded aggregate, if any. A failed
// reload leaves the previous snapshot in place.
func (co *Coordinator) Snapshot(orderID string) (*model.Order, bool) {
	co.mu.RLock()
	defer co.mu.RUnlock()
	o, ok := co.snapshots[orderID]
	return o, ok
}

// Forget drops the cached snapshot, e.g. when the actor navigates away.
func (co *Coordinator) Forget(orderID string) {
	co.mu.Lock()
	delete(co.snapshots, orderID)
	co.mu.Unlock()
}
