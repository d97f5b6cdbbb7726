package codec

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/internal/collision"
	"github.com/arloliu/graft/internal/options"
	"github.com/arloliu/graft/session"
)

// Registry resolves and caches codecs and copiers. It is safe for concurrent use.
type Registry struct {
	logger      *slog.Logger
	sessionOpts []session.Option
	sessions    *session.Pool

	mu        sync.Mutex
	overrides atomic.Pointer[overrideTable]
	cache     atomic.Pointer[generation]

	namesMu     sync.RWMutex
	names       *collision.Tracker
	customNames map[reflect.Type]string
}

// RegistryOption configures a Registry.
type RegistryOption = options.Option[*Registry]

// WithLogger sets the logger for registry events. The default discards everything.
func WithLogger(logger *slog.Logger) RegistryOption {
	return options.NoError(func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithSessionOptions configures the sessions handed out by the registry's pool.
func WithSessionOptions(opts ...session.Option) RegistryOption {
	return options.NoError(func(r *Registry) {
		r.sessionOpts = append(r.sessionOpts, opts...)
	})
}

// overrideTable is replaced as a whole on every change.
type overrideTable struct {
	codecs         map[reflect.Type]FieldCodec
	copiers        map[reflect.Type]ValueCopier
	removedCodecs  map[reflect.Type]struct{}
	removedCopiers map[reflect.Type]struct{}
	immutable      map[reflect.Type]struct{}
}

func (t *overrideTable) clone() *overrideTable {
	c := &overrideTable{
		codecs:         make(map[reflect.Type]FieldCodec, len(t.codecs)+1),
		copiers:        make(map[reflect.Type]ValueCopier, len(t.copiers)+1),
		removedCodecs:  make(map[reflect.Type]struct{}, len(t.removedCodecs)),
		removedCopiers: make(map[reflect.Type]struct{}, len(t.removedCopiers)),
		immutable:      make(map[reflect.Type]struct{}, len(t.immutable)),
	}
	for k, v := range t.codecs {
		c.codecs[k] = v
	}
	for k, v := range t.copiers {
		c.copiers[k] = v
	}
	for k := range t.removedCodecs {
		c.removedCodecs[k] = struct{}{}
	}
	for k := range t.removedCopiers {
		c.removedCopiers[k] = struct{}{}
	}
	for k := range t.immutable {
		c.immutable[k] = struct{}{}
	}

	return c
}

type codecEntry struct {
	codec FieldCodec
	err   error
}

type copierEntry struct {
	copier ValueCopier
	err    error
}

// generation is the resolution cache for one override table.
type generation struct {
	codecs  sync.Map
	copiers sync.Map
}

// NewRegistry creates a registry holding the built-in codecs and copiers.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	reg := &Registry{
		logger:      slog.New(slog.DiscardHandler),
		names:       collision.NewTracker(),
		customNames: make(map[reflect.Type]string),
	}
	if err := options.Apply(reg, opts...); err != nil {
		return nil, err
	}

	pool, err := session.NewPool(reg.sessionOpts...)
	if err != nil {
		return nil, err
	}
	reg.sessions = pool
	reg.overrides.Store((&overrideTable{}).clone())
	reg.cache.Store(&generation{})

	for t, name := range builtinNames() {
		if err := reg.names.Track(name, t); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	reg, err := NewRegistry()
	if err != nil {
		panic(err)
	}

	return reg
})

// Default returns the shared registry used by the package-level helpers of graft.
func Default() *Registry {
	return defaultRegistry()
}

// Sessions returns the registry's session pool.
func (reg *Registry) Sessions() *session.Pool {
	return reg.sessions
}

// Logger returns the registry's logger.
func (reg *Registry) Logger() *slog.Logger {
	return reg.logger
}

func (reg *Registry) update(fn func(t *overrideTable)) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	next := reg.overrides.Load().clone()
	fn(next)
	reg.overrides.Store(next)
	reg.cache.Store(&generation{})
}

// RegisterFieldCodec overrides the codec of t.
func (reg *Registry) RegisterFieldCodec(t reflect.Type, c FieldCodec) {
	reg.update(func(ov *overrideTable) {
		ov.codecs[t] = c
		delete(ov.removedCodecs, t)
	})
	reg.logger.Debug("codec registered", "type", t.String())
}

// RegisterValueCopier overrides the copier of t.
func (reg *Registry) RegisterValueCopier(t reflect.Type, c ValueCopier) {
	reg.update(func(ov *overrideTable) {
		ov.copiers[t] = c
		delete(ov.removedCopiers, t)
	})
	reg.logger.Debug("copier registered", "type", t.String())
}

// RemoveFieldCodec drops the override and the built-in codec of t, so resolution
// falls through to shape specialization or the structural fallback.
func (reg *Registry) RemoveFieldCodec(t reflect.Type) {
	reg.update(func(ov *overrideTable) {
		delete(ov.codecs, t)
		ov.removedCodecs[t] = struct{}{}
	})
	reg.logger.Debug("codec removed", "type", t.String())
}

// RemoveValueCopier drops the override and the built-in copier of t.
func (reg *Registry) RemoveValueCopier(t reflect.Type) {
	reg.update(func(ov *overrideTable) {
		delete(ov.copiers, t)
		ov.removedCopiers[t] = struct{}{}
	})
	reg.logger.Debug("copier removed", "type", t.String())
}

// MarkImmutableType declares values of t immutable, so copies share them.
func (reg *Registry) MarkImmutableType(t reflect.Type) {
	reg.update(func(ov *overrideTable) {
		ov.immutable[t] = struct{}{}
	})
	reg.logger.Debug("type marked immutable", "type", t.String())
}

// RegisterTypeName binds a wire name to t for Encoded type descriptors.
func (reg *Registry) RegisterTypeName(t reflect.Type, name string) error {
	if name == "" {
		return fmt.Errorf("empty type name for %v: %w", t, errs.ErrInvalidConfig)
	}

	reg.namesMu.Lock()
	defer reg.namesMu.Unlock()

	if err := reg.names.Track(name, t); err != nil {
		return err
	}
	reg.customNames[t] = name

	return nil
}

// Codec returns the codec of t after checking that every type reachable from t
// can be encoded.
func (reg *Registry) Codec(t reflect.Type) (FieldCodec, error) {
	c, err := reg.codecFor(t)
	if err != nil {
		return nil, err
	}
	if err := reg.validate(t, func(t reflect.Type) (any, error) { return reg.codecFor(t) }); err != nil {
		return nil, err
	}

	return c, nil
}

// Copier returns the copier of t after checking every reachable type.
func (reg *Registry) Copier(t reflect.Type) (ValueCopier, error) {
	c, err := reg.copierFor(t)
	if err != nil {
		return nil, err
	}
	if err := reg.validate(t, func(t reflect.Type) (any, error) { return reg.copierFor(t) }); err != nil {
		return nil, err
	}

	return c, nil
}

func (reg *Registry) codecFor(t reflect.Type) (FieldCodec, error) {
	gen := reg.cache.Load()
	if e, ok := gen.codecs.Load(t); ok {
		entry := e.(codecEntry) //nolint:forcetypeassert
		return entry.codec, entry.err
	}

	c, err := reg.resolveCodec(t)
	if err != nil {
		reg.logger.Warn("codec resolution failed", "type", t.String(), "error", err)
	}
	e, _ := gen.codecs.LoadOrStore(t, codecEntry{codec: c, err: err})
	entry := e.(codecEntry) //nolint:forcetypeassert

	return entry.codec, entry.err
}

func (reg *Registry) copierFor(t reflect.Type) (ValueCopier, error) {
	gen := reg.cache.Load()
	if e, ok := gen.copiers.Load(t); ok {
		entry := e.(copierEntry) //nolint:forcetypeassert
		return entry.copier, entry.err
	}

	c, err := reg.resolveCopier(t)
	if err != nil {
		reg.logger.Warn("copier resolution failed", "type", t.String(), "error", err)
	}
	e, _ := gen.copiers.LoadOrStore(t, copierEntry{copier: c, err: err})
	entry := e.(copierEntry) //nolint:forcetypeassert

	return entry.copier, entry.err
}

func (reg *Registry) resolveCodec(t reflect.Type) (FieldCodec, error) {
	ov := reg.overrides.Load()
	if c, ok := ov.codecs[t]; ok {
		return c, nil
	}
	if _, removed := ov.removedCodecs[t]; !removed {
		if c, ok := builtinCodecs()[t]; ok {
			return c, nil
		}
	}

	return reg.specializeCodec(t)
}

func (reg *Registry) resolveCopier(t reflect.Type) (ValueCopier, error) {
	ov := reg.overrides.Load()
	if c, ok := ov.copiers[t]; ok {
		return c, nil
	}
	if _, ok := ov.immutable[t]; ok {
		return immutableCopier{}, nil
	}
	if _, removed := ov.removedCopiers[t]; !removed {
		if c, ok := builtinCopiers()[t]; ok {
			return c, nil
		}
	}

	return reg.specializeCopier(t)
}

// validate walks every type statically reachable from root, resolving each with
// resolve. Named types met on the way are added to the name table so that a reader
// using this registry can resolve them from Encoded headers.
func (reg *Registry) validate(root reflect.Type, resolve func(reflect.Type) (any, error)) error {
	seen := map[reflect.Type]struct{}{root: {}}
	stack := []reflect.Type{root}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := resolve(t)
		if err != nil {
			if t != root {
				return fmt.Errorf("%v reachable from %v: %w", t, root, err)
			}

			return err
		}
		if err := reg.trackType(t); err != nil {
			reg.logger.Warn("type name not tracked", "type", t.String(), "error", err)
		}

		p, ok := c.(parent)
		if !ok {
			continue
		}
		for _, child := range p.childTypes() {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			stack = append(stack, child)
		}
	}

	return nil
}

// GetCodec returns the codec of T.
func GetCodec[T any](reg *Registry) (Codec[T], error) {
	c, err := reg.Codec(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return typedCodec[T]{c: c}, nil
}

// GetDeepCopier returns the copier of T.
func GetDeepCopier[T any](reg *Registry) (Copier[T], error) {
	c, err := reg.Copier(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return typedCopier[T]{c: c}, nil
}

// RegisterCodec overrides the codec of T.
func RegisterCodec[T any](reg *Registry, c Codec[T]) {
	t := reflect.TypeFor[T]()
	reg.RegisterFieldCodec(t, codecFunc[T]{c: c, typ: t})
}

// RegisterCopier overrides the copier of T.
func RegisterCopier[T any](reg *Registry, c Copier[T]) {
	reg.RegisterValueCopier(reflect.TypeFor[T](), copierFunc[T]{c: c})
}

// RemoveCodec drops the registered or built-in codec of T.
func RemoveCodec[T any](reg *Registry) {
	reg.RemoveFieldCodec(reflect.TypeFor[T]())
}

// RemoveCopier drops the registered or built-in copier of T.
func RemoveCopier[T any](reg *Registry) {
	reg.RemoveValueCopier(reflect.TypeFor[T]())
}

// RegisterType binds a wire name to T.
func RegisterType[T any](reg *Registry, name string) error {
	return reg.RegisterTypeName(reflect.TypeFor[T](), name)
}

// MarkImmutable declares values of T immutable.
func MarkImmutable[T any](reg *Registry) {
	reg.MarkImmutableType(reflect.TypeFor[T]())
}
