// Package remote is the in-memory stand-in for the console backend. Every call is
// tenant scoped, pays a configurable latency that the caller's context can cut short,
// and hands out deep copies so callers never share state with the store.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/colloki/console/internal/files"
	"github.com/colloki/console/internal/observability"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/settings"
	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

// FaultFunc decides whether a call fails at the transport level. A non-nil return is
// surfaced to the caller wrapped in a TransportError.
type FaultFunc func(op, tenantID string) error

// Options tunes a Gateway.
type Options struct {
	Latency time.Duration
	Clock   func() time.Time
	Metrics *observability.GatewayMetrics
	Logger  *slog.Logger
}

type tenantData struct {
	users    []users.User
	roles    []rbac.Role
	logs     []shared.AuditLog
	files    []files.TenantFile
	settings settings.TenantSettings
}

// Gateway is a multi-tenant in-memory backend.
type Gateway struct {
	latency time.Duration
	clock   func() time.Time
	metrics *observability.GatewayMetrics
	logger  *slog.Logger

	mu      sync.RWMutex
	tenants map[string]*tenantData
	fault   FaultFunc

	inflightMu sync.Mutex
	inflight   map[string]struct{}

	fetches singleflight.Group
}

// New builds an empty Gateway. Use Seed to load sample data.
func New(opts Options) *Gateway {
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Gateway{
		latency:  opts.Latency,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		tenants:  make(map[string]*tenantData),
		inflight: make(map[string]struct{}),
	}
}

// InjectFault installs fn as the transport failure hook. nil removes it.
func (g *Gateway) InjectFault(fn FaultFunc) {
	g.mu.Lock()
	g.fault = fn
	g.mu.Unlock()
}

// call runs fn against the tenant's data after the simulated round trip.
// A cancelled context aborts before anything is read or written.
func (g *Gateway) call(ctx context.Context, op, tenantID string, write bool, fn func(*tenantData) error) error {
	tracker := g.metrics.Track(op)
	if tenantID == "" {
		return tracker.End(shared.ErrValidation("remote: tenant id required"))
	}
	if err := g.injectedFault(op, tenantID); err != nil {
		g.logger.Warn("remote: injected fault", slog.String("op", op), slog.String("tenant", tenantID), slog.Any("error", err))
		return tracker.End(err)
	}
	if err := g.wait(ctx); err != nil {
		return tracker.End(err)
	}
	if write {
		g.mu.Lock()
		defer g.mu.Unlock()
	} else {
		g.mu.RLock()
		defer g.mu.RUnlock()
	}
	return tracker.End(fn(g.tenantLocked(tenantID, write)))
}

func (g *Gateway) injectedFault(op, tenantID string) error {
	g.mu.RLock()
	fault := g.fault
	g.mu.RUnlock()
	if fault == nil {
		return nil
	}
	if err := fault(op, tenantID); err != nil {
		return shared.ErrTransport(op, err)
	}
	return nil
}

func (g *Gateway) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// tenantLocked returns the tenant's data, creating it on writes. Reads of an unknown
// tenant see empty collections, the default role catalog and default settings.
func (g *Gateway) tenantLocked(tenantID string, create bool) *tenantData {
	if t, ok := g.tenants[tenantID]; ok {
		return t
	}
	t := &tenantData{roles: rbac.DefaultRoles(), settings: settings.Defaults(tenantID)}
	if create {
		g.tenants[tenantID] = t
	}
	return t
}

// guard claims an in-flight slot for one entity. A second mutating call for the same
// key while the first is outstanding fails with ConflictError.
func (g *Gateway) guard(tenantID, collection, entity string) (func(), error) {
	key := tenantID + "/" + collection + "/" + entity
	g.inflightMu.Lock()
	defer g.inflightMu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return nil, shared.ErrConflict("remote: %s %s already has a request in flight", collection, entity)
	}
	g.inflight[key] = struct{}{}
	return func() {
		g.inflightMu.Lock()
		delete(g.inflight, key)
		g.inflightMu.Unlock()
	}, nil
}

// coalesce shares one backend round trip between concurrent identical fetches. The shared
// call outlives any single caller; each caller still stops waiting when its own ctx ends.
func coalesce[T any](ctx context.Context, g *Gateway, key string, fetch func(context.Context) (T, error), clone func(T) T) (T, error) {
	var zero T
	ch := g.fetches.DoChan(key, func() (any, error) {
		return fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("remote: unexpected %T for %s", res.Val, key)
		}
		return clone(v), nil
	}
}
