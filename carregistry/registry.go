package carregistry

import (
	"context"
	"slices"
	"sync"

	errors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-flyweight/flyweight"
)

// DefaultConcurrency bounds the number of cars RegisterAll handles at once.
const DefaultConcurrency = 8

// Record is a registered car: its unique data plus the shared Flyweight.
type Record struct {
	ID        uuid.UUID
	Plates    string
	Owner     string
	Flyweight *flyweight.Flyweight
}

// Extrinsic returns the per-car state handed to the Flyweight when rendering.
func (r Record) Extrinsic() flyweight.ExtrinsicState {
	return flyweight.ExtrinsicState{r.Plates, r.Owner}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration lines.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConcurrency bounds RegisterAll. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithIDGenerator replaces uuid.New as the source of record identifiers.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// Registry records cars against an InterningCache so that cars sharing a
// brand, model and color share one Flyweight.
type Registry struct {
	cache       *flyweight.InterningCache
	logger      *zap.Logger
	concurrency int
	newID       func() uuid.UUID

	mu      sync.RWMutex
	records []Record
}

// New returns a Registry backed by cache.
func New(cache *flyweight.InterningCache, opts ...Option) (*Registry, error) {
	if cache == nil {
		return nil, errors.New("interning cache is required", errors.CategoryBadInput)
	}

	r := &Registry{
		cache:       cache,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Cache returns the cache the registry interns shared state into.
func (r *Registry) Cache() *flyweight.InterningCache {
	return r.cache
}

// Register validates car, resolves its Flyweight and stores a Record.
// A nil ctx is treated as context.Background().
func (r *Registry) Register(ctx context.Context, car Car) (Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	logger := r.logger.With(zap.String("plates", car.Plates))
	if id := requestIDFromContext(ctx); id != "" {
		logger = logger.With(zap.String("request_id", id))
	}

	if err := car.Validate(); err != nil {
		logger.Warn("rejecting car", zap.Error(err))
		return Record{}, err
	}

	logger.Info("adding car to police database", zap.String("owner", car.Owner))

	shared, _, err := car.Split()
	if err != nil {
		return Record{}, err
	}

	fw, created, err := r.cache.GetOrCreate(shared)
	if err != nil {
		logger.Error("flyweight lookup failed", zap.Error(err))
		return Record{}, err
	}

	fields := []zap.Field{
		zap.String("key", fw.Key().String()),
		zap.Uint64("fingerprint", fw.Key().Fingerprint()),
	}
	if created {
		logger.Info("can't find a flyweight, creating new one", fields...)
	} else {
		logger.Info("reusing existing flyweight", fields...)
	}

	record := Record{
		ID:        r.newID(),
		Plates:    car.Plates,
		Owner:     car.Owner,
		Flyweight: fw,
	}

	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()

	logger.Debug("car registered", zap.Stringer("record_id", record.ID))
	return record, nil
}

// RegisterAll registers cars concurrently, bounded by the configured
// concurrency. Records are returned in input order. The first failure
// cancels the remaining registrations; cars already registered stay
// registered.
func (r *Registry) RegisterAll(ctx context.Context, cars []Car) ([]Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r.logger.Debug("registering cars",
		zap.Int("count", len(cars)),
		zap.Int("concurrency", r.concurrency),
	)

	records := make([]Record, len(cars))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, car := range cars {
		g.Go(func() error {
			record, err := r.Register(gctx, car)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// Render runs the record's Flyweight operation with its extrinsic state.
func (r *Registry) Render(record Record) (flyweight.Output, error) {
	if record.Flyweight == nil {
		return nil, errors.New("record has no flyweight", errors.CategoryBadInput).
			WithTextCode(TextCodeInvalidRecord).
			WithMetadata(map[string]any{"record_id": record.ID.String()})
	}
	return record.Flyweight.Operation(record.Extrinsic())
}

// Records returns a copy of every record in registration order.
func (r *Registry) Records() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records)
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
