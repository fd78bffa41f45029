package scanner

import (
	"context"

	"hypermarket-pos/internal/model"
)

// Resolver maps a scanned code to a product. The catalog cache implements it.
type Resolver interface {
	Resolve(code string) (*model.Product, error)
}

// Result is the outcome of resolving one scanned code.
type Result struct {
	Code    string
	Product *model.Product
	Err     error
}

// Feed is the input-device abstraction for barcode scanners: a dedicated
// channel of scanned codes, each resolved against the catalog and handed to
// the sink. This replaces accumulating raw keystrokes on a global listener.
type Feed struct {
	resolver Resolver
	sink     func(Result)
	codes    chan string
}

// NewFeed builds a feed with the given channel buffer. sink is invoked from
// the feed's own goroutine, once per scanned code.
func NewFeed(resolver Resolver, sink func(Result), buffer int) *Feed {
	return &Feed{
		resolver: resolver,
		sink:     sink,
		codes:    make(chan string, buffer),
	}
}

// Push offers one scanned code to the feed without blocking. It reports
// whether the code was accepted; a full buffer drops the code, so a producer
// can never hang on a feed that stopped draining (e.g. during shutdown).
func (f *Feed) Push(code string) bool {
	select {
	case f.codes <- code:
		return true
	default:
		return false
	}
}

// Run consumes codes until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case code := <-f.codes:
			product, err := f.resolver.Resolve(code)
			f.sink(Result{Code: code, Product: product, Err: err})
		}
	}
}
