// Package store keeps per-user, in-memory mirrors of the remote collections.
//
// Every store follows the same contract: mutations are applied to memory and
// flushed to the preference cache, remote writes run outside the lock, and a
// failed remote write is reported through State.Error instead of being
// returned. Removals and flag flips are optimistic and never rolled back;
// the divergence is recorded as a pending reconciliation until the next
// successful Load replaces the state.
//
// Concurrent mutations of the same entity are not serialized: whichever
// remote call settles last decides the final in-memory state.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/pkg/logger"
)

// State is the observable shape of a store.
type State[D any] struct {
	Items     D      `json:"items"`
	IsLoading bool   `json:"isLoading"`
	Error     string `json:"error,omitempty"`
}

// Pending marks an entity whose local state is known to differ from the
// remote row.
type Pending struct {
	EntityID string    `json:"entityId"`
	Op       string    `json:"op"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

// Deps are the collaborators shared by every store of a session.
type Deps struct {
	Cache       service.PreferenceCache
	Publisher   service.EventPublisher
	Logger      logger.Logger
	CallTimeout time.Duration
	// SessionIdleTTL evicts sessions unused for this long; zero keeps them.
	SessionIdleTTL time.Duration
}

type base[D any] struct {
	mu        sync.RWMutex
	data      D
	isLoading bool
	errMsg    string
	loadSeq   uint64
	pending   map[string]Pending

	userID     uuid.UUID
	collection string
	cacheKey   string
	clone      func(D) D
	deps       Deps
	log        logger.Logger
}

func newBase[D any](userID uuid.UUID, collection, cacheKey string, initial D, clone func(D) D, deps Deps) *base[D] {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &base[D]{
		data:       initial,
		pending:    make(map[string]Pending),
		userID:     userID,
		collection: collection,
		cacheKey:   cacheKey,
		clone:      clone,
		deps:       deps,
		log:        log.With(zap.String("store", collection), zap.String("user_id", userID.String())),
	}
}

func (b *base[D]) Snapshot() State[D] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return State[D]{Items: b.clone(b.data), IsLoading: b.isLoading, Error: b.errMsg}
}

func (b *base[D]) Pending() []Pending {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Pending, 0, len(b.pending))
	for _, p := range b.pending {
		out = append(out, p)
	}
	return out
}

// Hydrate replaces the in-memory data with the cached copy, if any.
func (b *base[D]) Hydrate(ctx context.Context) error {
	if b.deps.Cache == nil || b.cacheKey == "" {
		return nil
	}
	raw, found, err := b.deps.Cache.Get(ctx, b.userID, b.cacheKey)
	if err != nil {
		b.log.Warn("Failed to read preference cache", zap.Error(err))
		return err
	}
	if !found {
		return nil
	}
	var cached D
	if err := json.Unmarshal(raw, &cached); err != nil {
		b.log.Warn("Discarding unreadable cache entry", zap.String("key", b.cacheKey), zap.Error(err))
		return nil
	}
	b.mu.Lock()
	b.data = cached
	b.mu.Unlock()
	return nil
}

// flush writes the current data to the preference cache. Cache failures are
// logged only.
func (b *base[D]) flush(ctx context.Context) {
	if b.deps.Cache == nil || b.cacheKey == "" {
		return
	}
	b.mu.RLock()
	raw, err := json.Marshal(b.data)
	b.mu.RUnlock()
	if err != nil {
		b.log.Error("Failed to encode store for cache", err)
		return
	}
	if err := b.deps.Cache.Set(ctx, b.userID, b.cacheKey, raw); err != nil {
		b.log.Warn("Failed to write preference cache", zap.String("key", b.cacheKey), zap.Error(err))
	}
}

func (b *base[D]) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.deps.CallTimeout > 0 {
		return context.WithTimeout(ctx, b.deps.CallTimeout)
	}
	return context.WithCancel(ctx)
}

// load runs fetch and applies its result only if no newer load was issued
// in the meantime. On failure the previous data stays available.
func (b *base[D]) load(ctx context.Context, fetch func(ctx context.Context) (D, error), failMsg string) {
	b.mu.Lock()
	b.loadSeq++
	seq := b.loadSeq
	b.isLoading = true
	b.errMsg = ""
	b.mu.Unlock()

	callCtx, cancel := b.callCtx(ctx)
	data, err := fetch(callCtx)
	cancel()

	b.mu.Lock()
	if seq != b.loadSeq {
		b.mu.Unlock()
		b.log.Debug("Dropping superseded load result")
		return
	}
	b.isLoading = false
	if err != nil {
		b.errMsg = failMsg
		b.mu.Unlock()
		b.log.Error("Load from remote store failed", err)
		return
	}
	b.data = data
	clear(b.pending)
	b.mu.Unlock()

	b.flush(ctx)
}

func (b *base[D]) setError(msg string, err error) {
	b.mu.Lock()
	b.errMsg = msg
	b.mu.Unlock()
	b.log.Error(msg, err)
}

func (b *base[D]) clearError() {
	b.mu.Lock()
	b.errMsg = ""
	b.mu.Unlock()
}

// markPending records local/remote drift for entityID and asks the
// reconciler to replay the remote write.
func (b *base[D]) markPending(ctx context.Context, entityID, op string, dbID *uuid.UUID, fields any, reason string) {
	at := time.Now().UTC()
	b.mu.Lock()
	b.pending[entityID] = Pending{EntityID: entityID, Op: op, Reason: reason, At: at}
	b.mu.Unlock()

	if b.deps.Publisher == nil || dbID == nil {
		return
	}
	ev := service.ReconcileEvent{
		Collection: b.collection,
		Op:         op,
		UserID:     b.userID,
		EntityID:   entityID,
		DBID:       dbID,
		Reason:     reason,
		At:         at,
	}
	if fields != nil {
		raw, err := json.Marshal(fields)
		if err != nil {
			b.log.Error("Failed to encode reconcile fields", err)
			return
		}
		ev.Fields = raw
	}
	if err := b.deps.Publisher.PublishReconcile(context.WithoutCancel(ctx), ev); err != nil {
		b.log.Error("Failed to publish reconcile event", err, zap.String("entity_id", entityID))
	}
}
