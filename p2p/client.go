// Package p2p holds the light node's view of the DHT: the routing map of
// known peers and the local record store.
package p2p

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/initia-labs/lightnode/cache"
	"github.com/initia-labs/lightnode/config"
	"github.com/initia-labs/lightnode/types"
)

var (
	ErrClientClosed       = errors.New("p2p client closed")
	ErrPruningUnsupported = errors.New("record store expires records itself")
	ErrPeerNotFound       = errors.New("peer not found")
)

type Client struct {
	peers     *cache.Cache[string, PeerInfo]
	store     RecordStore
	peerTTL   time.Duration
	recordTTL time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// New opens the configured record store and seeds the routing map with the
// bootstrap peers.
func New(cfg *config.P2PConfig, logger *slog.Logger) (*Client, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	c := NewWithStore(cfg, store, logger)
	for _, raw := range cfg.BootstrapPeers {
		peer, err := ParseBootstrapPeer(raw)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		peer.Connected = true
		c.AddPeer(peer)
	}

	return c, nil
}

func NewWithStore(cfg *config.P2PConfig, store RecordStore, logger *slog.Logger) *Client {
	c := &Client{
		store:     store,
		peerTTL:   cfg.PeerTTL,
		recordTTL: cfg.RecordTTL,
		now:       time.Now,
		logger:    logger.With("module", "p2p"),
	}
	c.peers = cache.NewWithEvict[string, PeerInfo](cfg.MaxPeers, func(id string, _ PeerInfo) {
		c.logger.Debug("peer dropped from routing map", slog.String("peer", id))
	})
	return c
}

func (c *Client) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return types.NewInternalError("p2p client unavailable", ErrClientClosed)
	}
	return nil
}

// AddPeer inserts or replaces a peer. A zero LastSeen is set to now.
func (c *Client) AddPeer(peer PeerInfo) {
	if peer.LastSeen.IsZero() {
		peer.LastSeen = c.now()
	}
	c.peers.Set(peer.ID, peer)
}

func (c *Client) SetConnected(id string, connected bool) error {
	peer, ok := c.peers.Peek(id)
	if !ok {
		return ErrPeerNotFound
	}
	peer.Connected = connected
	peer.LastSeen = c.now()
	c.peers.Set(id, peer)
	return nil
}

func (c *Client) RemovePeer(id string) bool {
	return c.peers.Remove(id)
}

// ShrinkRoutingMap evicts disconnected peers not seen within the peer ttl.
func (c *Client) ShrinkRoutingMap(ctx context.Context) error {
	if err := c.checkOpen(ctx); err != nil {
		return err
	}

	cutoff := c.now().Add(-c.peerTTL)
	evicted := 0
	for _, id := range c.peers.Keys() {
		peer, ok := c.peers.Peek(id)
		if !ok || peer.Connected || peer.LastSeen.After(cutoff) {
			continue
		}
		if c.peers.Remove(id) {
			evicted++
		}
	}

	if evicted > 0 {
		c.logger.Debug("routing map shrunk", slog.Int("evicted", evicted))
	}
	return nil
}

func (c *Client) RoutingMapSize(ctx context.Context) (int, error) {
	if err := c.checkOpen(ctx); err != nil {
		return 0, err
	}
	return c.peers.Len(), nil
}

// CountDHTEntries returns the number of known peers and how many of them are
// reachable on a public address.
func (c *Client) CountDHTEntries(ctx context.Context) (int, int, error) {
	if err := c.checkOpen(ctx); err != nil {
		return 0, 0, err
	}

	total, public := 0, 0
	for _, id := range c.peers.Keys() {
		peer, ok := c.peers.Peek(id)
		if !ok {
			continue
		}
		total++
		if peer.IsPublic() {
			public++
		}
	}
	return total, public, nil
}

func (c *Client) ListConnectedPeers(ctx context.Context) ([]string, error) {
	if err := c.checkOpen(ctx); err != nil {
		return nil, err
	}

	connected := make([]string, 0)
	for _, id := range c.peers.Keys() {
		if peer, ok := c.peers.Peek(id); ok && peer.Connected {
			connected = append(connected, id)
		}
	}
	sort.Strings(connected)
	return connected, nil
}

func (c *Client) PutRecord(ctx context.Context, key string, value []byte) error {
	if err := c.checkOpen(ctx); err != nil {
		return err
	}
	return c.store.Put(ctx, key, value, c.recordTTL)
}

func (c *Client) GetRecord(ctx context.Context, key string) ([]byte, error) {
	if err := c.checkOpen(ctx); err != nil {
		return nil, err
	}
	return c.store.Get(ctx, key)
}

func (c *Client) RecordCount(ctx context.Context) (int, error) {
	if err := c.checkOpen(ctx); err != nil {
		return 0, err
	}
	return c.store.Len(ctx)
}

// PruningEnabled is false for stores that expire records on their own.
func (c *Client) PruningEnabled() bool {
	_, ok := c.store.(Pruner)
	return ok
}

func (c *Client) PruneExpiredRecords(ctx context.Context) (int, error) {
	if err := c.checkOpen(ctx); err != nil {
		return 0, err
	}
	pruner, ok := c.store.(Pruner)
	if !ok {
		return 0, ErrPruningUnsupported
	}
	return pruner.PruneExpired(ctx, c.now())
}

// Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.store.Close()
}
