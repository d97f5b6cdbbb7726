package codec

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/internal/options"
	"github.com/arloliu/graft/session"
)

type operationConfig struct {
	pool        *session.Pool
	segmentSize int
}

// OperationOption configures a Serializer or a DeepCopier.
type OperationOption = options.Option[*operationConfig]

// WithSessionPool makes the operation check sessions out of p instead of the registry's pool.
func WithSessionPool(p *session.Pool) OperationOption {
	return options.NoError(func(c *operationConfig) {
		if p != nil {
			c.pool = p
		}
	})
}

// WithSegmentSize sets the writer segment size used by SerializeToBytes.
func WithSegmentSize(n int) OperationOption {
	return options.New(func(c *operationConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidSegmentSize, n)
		}
		c.segmentSize = n

		return nil
	})
}

func newOperationConfig(reg *Registry, opts []OperationOption) (operationConfig, error) {
	cfg := operationConfig{pool: reg.sessions, segmentSize: buffers.DefaultMaxSegmentSize}
	if err := options.Apply(&cfg, opts...); err != nil {
		return operationConfig{}, err
	}

	return cfg, nil
}

// Serializer writes and reads values of type T as one top-level field.
type Serializer[T any] struct {
	reg     *Registry
	typ     reflect.Type
	codec   FieldCodec
	cfg     operationConfig
	writers sync.Pool
}

// NewSerializer resolves the codec of T. It fails with errs.ErrUnsupportedType when
// any type statically reachable from T has no codec. A nil reg selects Default().
func NewSerializer[T any](reg *Registry, opts ...OperationOption) (*Serializer[T], error) {
	if reg == nil {
		reg = Default()
	}
	cfg, err := newOperationConfig(reg, opts)
	if err != nil {
		return nil, err
	}

	typ := reflect.TypeFor[T]()
	c, err := reg.Codec(typ)
	if err != nil {
		return nil, err
	}

	s := &Serializer[T]{reg: reg, typ: typ, codec: c, cfg: cfg}
	s.writers.New = func() any {
		w, _ := buffers.NewWriter(nil,
			buffers.WithMaxSegmentSize(cfg.segmentSize),
			buffers.WithTypeResolver(reg))

		return w
	}

	return s, nil
}

func resetTables(sess *session.Session) {
	sess.References.Reset()
	sess.Types.Reset()
}

// Serialize writes v to w and commits it. The reference and type tables of the
// writer's session are reset first, so every call produces a self-contained payload.
func (s *Serializer[T]) Serialize(v T, w *buffers.Writer) error {
	resetTables(w.Session())
	if err := s.codec.WriteField(w, 0, s.typ, valueOf(v)); err != nil {
		return err
	}
	w.Commit()

	return nil
}

// Deserialize reads one value written by Serialize.
func (s *Serializer[T]) Deserialize(r *buffers.Reader) (T, error) {
	var zero T

	resetTables(r.Session())
	h, err := r.ReadFieldHeader()
	if err != nil {
		return zero, err
	}
	if h.WireType == format.WireExtended {
		return zero, fmt.Errorf("payload starts with %s: %w", h, errs.ErrMalformedInput)
	}
	v, err := s.codec.ReadValue(r, h)
	if err != nil {
		return zero, err
	}

	return fromValue[T](v), nil
}

// SerializeToBytes returns the encoding of v using a pooled session and writer.
func (s *Serializer[T]) SerializeToBytes(v T) ([]byte, error) {
	sess := s.cfg.pool.Get()
	defer s.cfg.pool.Put(sess)

	w, _ := s.writers.Get().(*buffers.Writer)
	w.Reset(sess)
	defer func() {
		w.Reset(nil)
		s.writers.Put(w)
	}()

	if err := s.Serialize(v, w); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DeserializeBytes decodes a value produced by SerializeToBytes.
func (s *Serializer[T]) DeserializeBytes(data []byte) (T, error) {
	sess := s.cfg.pool.Get()
	defer s.cfg.pool.Put(sess)

	r, err := buffers.NewBytesReader(data, sess, buffers.WithReaderTypeResolver(s.reg))
	if err != nil {
		var zero T
		return zero, err
	}

	return s.Deserialize(r)
}

// DeepCopier produces deep copies of values of type T.
type DeepCopier[T any] struct {
	copier ValueCopier
	pool   *session.Pool
}

// NewDeepCopier resolves the copier of T. A nil reg selects Default().
func NewDeepCopier[T any](reg *Registry, opts ...OperationOption) (*DeepCopier[T], error) {
	if reg == nil {
		reg = Default()
	}
	cfg, err := newOperationConfig(reg, opts)
	if err != nil {
		return nil, err
	}
	c, err := reg.Copier(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return &DeepCopier[T]{copier: c, pool: cfg.pool}, nil
}

// Copy returns a deep copy of v. Shared references in v stay shared in the copy
// and cycles are reproduced.
func (c *DeepCopier[T]) Copy(v T) (T, error) {
	if c.copier.IsImmutable() {
		return v, nil
	}

	sess := c.pool.Get()
	defer c.pool.Put(sess)

	out, err := c.copier.DeepCopy(valueOf(v), sess)
	if err != nil {
		var zero T
		return zero, err
	}

	return fromValue[T](out), nil
}

func registryOf(res buffers.TypeResolver) *Registry {
	if reg, ok := res.(*Registry); ok {
		return reg
	}

	return Default()
}

// WriteNested writes v as a field of the object being written, for use inside
// custom codecs. The codec comes from the writer's registry.
func WriteNested[T any](w *buffers.Writer, delta uint32, v T) error {
	typ := reflect.TypeFor[T]()
	c, err := registryOf(w.Resolver()).codecFor(typ)
	if err != nil {
		return err
	}

	return c.WriteField(w, delta, typ, valueOf(v))
}

// ReadNested reads the field introduced by h as a T, for use inside custom codecs.
func ReadNested[T any](r *buffers.Reader, h buffers.FieldHeader) (T, error) {
	var zero T
	c, err := registryOf(r.Resolver()).codecFor(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	v, err := c.ReadValue(r, h)
	if err != nil {
		return zero, err
	}

	return fromValue[T](v), nil
}
