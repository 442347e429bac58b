// Package event implements the block event source: a bounded broadcast ring
// where every receiver sees every event unless it falls too far behind.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/initia-labs/lightnode/types"
)

var ErrClosed = errors.New("channel closed")

// LaggedError is returned once when a receiver missed events because it fell
// more than the ring capacity behind. The receiver resumes from the oldest
// retained event.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("channel lagged by %d", e.Skipped)
}

type Broadcaster struct {
	mu        sync.Mutex
	buf       []types.BlockVerified
	head      uint64 // sequence of the next event to be written
	closed    bool
	notify    chan struct{}
	receivers int
}

func NewBroadcaster(capacity int) *Broadcaster {
	if capacity < 1 {
		panic(fmt.Sprintf("broadcast capacity must be positive, got %d", capacity))
	}
	return &Broadcaster{
		buf:    make([]types.BlockVerified, capacity),
		notify: make(chan struct{}),
	}
}

// Send appends an event and wakes waiting receivers. It returns the number
// of subscribed receivers.
func (b *Broadcaster) Send(event types.BlockVerified) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	b.buf[b.head%uint64(len(b.buf))] = event
	b.head++
	b.wakeLocked()

	return b.receivers, nil
}

// Subscribe returns a receiver for events sent from now on.
func (b *Broadcaster) Subscribe() *Receiver {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.receivers++
	return &Receiver{b: b, next: b.head}
}

// Close is idempotent. Receivers drain what is left and then get ErrClosed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.wakeLocked()
}

func (b *Broadcaster) wakeLocked() {
	close(b.notify)
	b.notify = make(chan struct{})
}

type Receiver struct {
	b      *Broadcaster
	next   uint64
	closed bool
}

// Recv blocks until the next event is available.
func (r *Receiver) Recv(ctx context.Context) (types.BlockVerified, error) {
	b := r.b
	for {
		b.mu.Lock()
		if r.closed {
			b.mu.Unlock()
			return types.BlockVerified{}, ErrClosed
		}

		capacity := uint64(len(b.buf))
		var oldest uint64
		if b.head > capacity {
			oldest = b.head - capacity
		}

		if r.next < oldest {
			skipped := oldest - r.next
			r.next = oldest
			b.mu.Unlock()
			return types.BlockVerified{}, &LaggedError{Skipped: skipped}
		}

		if r.next < b.head {
			event := b.buf[r.next%capacity]
			r.next++
			b.mu.Unlock()
			return event, nil
		}

		if b.closed {
			b.mu.Unlock()
			return types.BlockVerified{}, ErrClosed
		}

		wait := b.notify
		b.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return types.BlockVerified{}, ctx.Err()
		}
	}
}

// Close unsubscribes the receiver.
func (r *Receiver) Close() {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.b.receivers--
}
