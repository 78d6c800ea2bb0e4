package nbdb

import (
	"context"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

type (
	// Store is an open database.
	Store = storage.Engine

	// Config is the full store configuration accepted by New.
	Config = storage.Config

	// Option adjusts the configuration passed to Open.
	Option = storage.Option

	// Stats describes a store's state.
	Stats = storage.Stats

	// Value is a JSON value. The zero Value is Absent.
	Value = domain.Value

	// Kind identifies the variant held by a Value.
	Kind = domain.Kind

	// Fields is an insertion-ordered set of object members.
	Fields = domain.Object

	// Indent selects the snapshot layout.
	Indent = codec.Indent

	// Error is the error type returned by the store.
	Error = domain.DomainError
)

// Value kinds.
const (
	KindAbsent = domain.KindAbsent
	KindString = domain.KindString
	KindInt    = domain.KindInt
	KindFloat  = domain.KindFloat
	KindBool   = domain.KindBool
	KindList   = domain.KindList
	KindObject = domain.KindObject
)

// Errors. Compare with errors.Is.
var (
	ErrKeyNotFound   = domain.ErrKeyNotFound
	ErrMalformedData = domain.ErrMalformedData
	ErrIOFailure     = domain.ErrIOFailure
	ErrClosed        = domain.ErrClosed
	ErrInvalidConfig = domain.ErrInvalidConfig
	ErrInvalidValue  = domain.ErrInvalidValue
)

// Open opens the store whose snapshot lives at path.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	return storage.Open(ctx, path, opts...)
}

// New opens a store from a full configuration.
func New(ctx context.Context, cfg Config) (*Store, error) {
	return storage.New(ctx, cfg)
}

// DefaultConfig returns the default configuration for path.
func DefaultConfig(path string) Config {
	return storage.DefaultConfig(path)
}

// Options.
var (
	WithIndent        = storage.WithIndent
	WithFlushInterval = storage.WithFlushInterval
	WithSyncLog       = storage.WithSyncLog
	WithWriteOnClose  = storage.WithWriteOnClose
	WithLogger        = storage.WithLogger
	WithRegisterer    = storage.WithRegisterer
)

// Layouts.
var (
	NoIndent    = codec.NoIndent
	Spaces      = codec.Spaces
	Literal     = codec.Literal
	ParseIndent = codec.ParseIndent
)

// Value constructors.
var (
	Absent        = domain.Absent
	String        = domain.String
	Int           = domain.Int
	Float         = domain.Float
	Bool          = domain.Bool
	List          = domain.List
	NewFields     = domain.NewObject
	FromInterface = domain.FromInterface
)

// Object wraps fields as an object Value. A nil fields is an empty object.
func Object(fields *Fields) Value { return domain.ObjectValue(fields) }

// Map builds an object Value from alternating key, value pairs in order.
// It panics on an odd argument count or a non-string key.
func Map(pairs ...any) Value {
	if len(pairs)%2 != 0 {
		panic("nbdb: Map needs key, value pairs")
	}
	obj := domain.NewObject()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("nbdb: Map keys must be strings")
		}
		v, ok := pairs[i+1].(Value)
		if !ok {
			panic("nbdb: Map values must be nbdb.Value")
		}
		obj.Set(key, v)
	}
	return domain.ObjectValue(obj)
}
