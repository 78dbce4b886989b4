package iso

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/gridstatus/core/logger"
	"github.com/kilianp07/gridstatus/core/model"
)

// ErrNotSupported is returned when an ISO does not publish the requested
// dataset for the requested date or market.
var ErrNotSupported = errors.New("not supported")

// NotSupported wraps ErrNotSupported with the operation and reason.
func NotSupported(op, reason string) error {
	return fmt.Errorf("%s: %s: %w", op, reason, ErrNotSupported)
}

// LMPQuery selects locational marginal prices.
type LMPQuery struct {
	Date   model.DateSpec
	Market model.Market
	// Locations restricts the result; nil or ["ALL"] keeps every location and
	// "HUBS" selects the trading hubs.
	Locations []string
}

// ISO is implemented by every operator client.
type ISO interface {
	ID() string
	Name() string
	// Location is the timezone every returned timestamp is expressed in.
	Location() *time.Location
	Markets() []model.Market
	GetFuelMix(ctx context.Context, date model.DateSpec) ([]model.FuelMix, error)
	GetLoad(ctx context.Context, date model.DateSpec) ([]model.Load, error)
	GetLoadForecast(ctx context.Context, date model.DateSpec) ([]model.LoadForecast, error)
	GetLMP(ctx context.Context, q LMPQuery) ([]model.LMP, error)
	GetInterconnectionQueue(ctx context.Context) ([]model.InterconnectionProject, error)
}

// Fetcher performs the HTTP GETs an ISO client needs.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, out any) error
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Options are handed to ISO constructors.
type Options struct {
	Fetcher Fetcher
	Logger  logger.Logger
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
	// MaxConcurrency bounds parallel day fetches of a date range.
	MaxConcurrency int
}

// Constructor builds an ISO client.
type Constructor func(Options) (ISO, error)

var (
	mu           sync.RWMutex
	constructors = map[string]Constructor{}
)

// Register adds an ISO constructor under id.
func Register(id string, c Constructor) {
	mu.Lock()
	defer mu.Unlock()
	constructors[id] = c
}

// New instantiates the ISO registered under id.
func New(id string, opts Options) (ISO, error) {
	mu.RLock()
	c, ok := constructors[id]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown iso %q (known: %v)", id, IDs())
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("iso %s: fetcher required", id)
	}
	return c(opts)
}

// IDs lists the registered ISO identifiers.
func IDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
