package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/satjeet/ClinePythonDividis/internal/credential"
)

// initTimeout bounds restoring a workspace. The restore runs detached from
// the request that triggered it, since it happens only once.
const initTimeout = 10 * time.Second

type entry struct {
	ws       *Workspace
	lastSeen time.Time

	once sync.Once
}

// Registry keeps one workspace per browser session id and evicts those not
// seen within the TTL. Eviction drops memory state only; the persisted
// token survives and is restored when the browser returns.
type Registry struct {
	deps    Deps
	ttl     time.Duration
	logger  *slog.Logger
	nowFunc func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		deps:    deps,
		ttl:     ttl,
		logger:  log,
		nowFunc: time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the workspace of sid, creating and initializing it on first
// use. Concurrent first requests share one initialization, which is not
// canceled with the request. A failed initialization is logged and leaves
// the workspace signed out.
func (r *Registry) Get(ctx context.Context, sid string) *Workspace {
	r.mu.Lock()
	e, ok := r.entries[sid]
	if !ok {
		e = &entry{ws: New(r.deps, credential.SessionKey(sid))}
		r.entries[sid] = e
	}
	e.lastSeen = r.nowFunc()
	r.mu.Unlock()

	e.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initTimeout)
		defer cancel()
		if err := e.ws.Init(ctx); err != nil {
			r.logger.WarnContext(ctx, "workspace init failed", slog.String("error", err.Error()))
		}
		// A rejected token navigates to login; the page guard decides instead.
		e.ws.TakeRedirect()
	})
	return e.ws
}

// Remove closes and forgets the workspace of sid.
func (r *Registry) Remove(sid string) {
	r.mu.Lock()
	e, ok := r.entries[sid]
	delete(r.entries, sid)
	r.mu.Unlock()
	if ok {
		e.ws.Close()
	}
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// sweep evicts workspaces idle for longer than the TTL.
func (r *Registry) sweep() int {
	r.mu.Lock()
	now := r.nowFunc()
	var stale []*entry
	for sid, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			stale = append(stale, e)
			delete(r.entries, sid)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		e.ws.Close()
	}
	return len(stale)
}

// Run sweeps idle workspaces until ctx is done, then closes the rest.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.logger.Debug("evicted idle workspaces", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range entries {
		e.ws.Close()
	}
}
