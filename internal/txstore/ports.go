// Package txstore declares the ports the analytics service uses to reach
// the transaction store.
package txstore

import (
	"context"

	"salesdash/internal/core"
)

type (
	// Finder returns the records selected by a filter in the store's
	// natural order.
	Finder interface {
		Find(ctx context.Context, f core.Filter) ([]core.Transaction, error)
	}

	// Pager returns one page of the records selected by a filter, and
	// counts them.
	Pager interface {
		Count(ctx context.Context, f core.Filter) (int, error)
		FindPage(ctx context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error)
	}

	// Replacer discards every record and inserts the given ones.
	Replacer interface {
		ReplaceAll(ctx context.Context, ts []core.Transaction) error
	}

	// Pinger reports whether the store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Store is everything a backend must provide.
	Store interface {
		Finder
		Pager
		Replacer
		Pinger
	}
)
