// Package diagnostics reports process and database health without mutating data.
package diagnostics

import (
	"context"
	"fmt"

	"github.com/wolfman30/mastry-api/internal/docstore"
)

// maxDetailRunes bounds the error text folded into a status string.
const maxDetailRunes = 50

// Status is the outcome of probing the document store.
type Status int

const (
	// StatusUnavailable means no database is configured at all.
	StatusUnavailable Status = iota
	// StatusUninitialized means a database is configured but no store was built.
	StatusUninitialized
	// StatusConnected means a store exists; introspection has not completed.
	StatusConnected
	// StatusConnectedWithError means a store exists but could not be introspected.
	StatusConnectedWithError
	// StatusWorking means the store answered a ping and a collection listing.
	StatusWorking
)

// String is the metric label for s.
func (s Status) String() string {
	switch s {
	case StatusUnavailable:
		return "unavailable"
	case StatusUninitialized:
		return "uninitialized"
	case StatusConnected:
		return "connected"
	case StatusConnectedWithError:
		return "connected_with_error"
	case StatusWorking:
		return "working"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the typed outcome of a probe.
type Result struct {
	Status      Status
	Detail      string
	Backend     string
	Name        string
	Collections []string
}

// Connected reports whether a store handle existed during the probe.
func (r Result) Connected() bool {
	return r.Status >= StatusConnected
}

// Text renders the human readable database status.
func (r Result) Text() string {
	switch r.Status {
	case StatusUninitialized:
		return "⚠️  Available but not initialized"
	case StatusConnected:
		return "✅ Available"
	case StatusConnectedWithError:
		return "⚠️  Connected but Error: " + r.Detail
	case StatusWorking:
		return "✅ Connected & Working"
	default:
		return "❌ Not Available"
	}
}

// Prober inspects a store. The store may be nil.
type Prober struct {
	store         docstore.Store
	urlConfigured bool
}

// NewProber builds a prober. urlConfigured tells an unconfigured database
// apart from one whose connection failed at startup.
func NewProber(store docstore.Store, urlConfigured bool) *Prober {
	return &Prober{store: store, urlConfigured: urlConfigured}
}

// Probe never panics and never returns an error; failures become statuses.
func (p *Prober) Probe(ctx context.Context) (res Result) {
	if p == nil || p.store == nil {
		if p != nil && p.urlConfigured {
			return Result{Status: StatusUninitialized, Collections: []string{}}
		}
		return Result{Status: StatusUnavailable, Collections: []string{}}
	}

	res = Result{
		Status:      StatusConnected,
		Collections: []string{},
	}
	defer func() {
		if rec := recover(); rec != nil {
			res.Status = StatusConnectedWithError
			res.Detail = truncate(fmt.Sprint(rec))
			res.Collections = []string{}
		}
	}()

	res.Backend = p.store.Backend()
	res.Name = p.store.Name()

	info, err := docstore.Introspect(ctx, p.store)
	if err != nil {
		res.Status = StatusConnectedWithError
		res.Detail = truncate(err.Error())
		return res
	}
	res.Status = StatusWorking
	res.Collections = info.Collections
	return res
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDetailRunes {
		return s
	}
	return string(runes[:maxDetailRunes])
}
