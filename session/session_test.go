package session

import (
	"reflect"
	"testing"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/typedesc"
	"github.com/stretchr/testify/require"
)

type node struct {
	Next *node
}

func TestIdentityOf(t *testing.T) {
	a := &node{}
	b := &node{}

	idA, ok := IdentityOf(reflect.ValueOf(a))
	require.True(t, ok)
	idA2, _ := IdentityOf(reflect.ValueOf(a))
	idB, _ := IdentityOf(reflect.ValueOf(b))
	require.Equal(t, idA, idA2)
	require.NotEqual(t, idA, idB)
	require.Equal(t, reflect.TypeFor[*node](), idA.Type())

	_, ok = IdentityOf(reflect.ValueOf((*node)(nil)))
	require.False(t, ok)
	_, ok = IdentityOf(reflect.ValueOf([]int{}))
	require.False(t, ok)
	_, ok = IdentityOf(reflect.ValueOf("text"))
	require.False(t, ok)

	s := []int{1, 2, 3}
	full, _ := IdentityOf(reflect.ValueOf(s))
	head, _ := IdentityOf(reflect.ValueOf(s[:2]))
	require.NotEqual(t, full, head)

	m := map[string]int{"a": 1}
	idM, ok := IdentityOf(reflect.ValueOf(m))
	require.True(t, ok)
	idM2, _ := IdentityOf(reflect.ValueOf(m))
	require.Equal(t, idM, idM2)
}

func TestReferenceTable_Writing(t *testing.T) {
	var table ReferenceTable
	a, _ := IdentityOf(reflect.ValueOf(&node{}))

	require.Equal(t, uint32(1), table.MarkValueField())

	id, isNew := table.GetOrCreateReferenceID(a)
	require.True(t, isNew)
	require.Equal(t, uint32(2), id)
	require.Equal(t, uint32(2), table.MarkValueField())

	id, isNew = table.GetOrCreateReferenceID(a)
	require.False(t, isNew)
	require.Equal(t, uint32(2), id)
	require.Equal(t, uint32(2), table.CurrentReferenceID())

	table.Reset()
	require.Equal(t, uint32(0), table.CurrentReferenceID())
	id, isNew = table.GetOrCreateReferenceID(a)
	require.True(t, isNew)
	require.Equal(t, uint32(1), id)
}

func TestReferenceTable_Reading(t *testing.T) {
	var table ReferenceTable
	v := reflect.ValueOf(&node{})

	ref := table.MarkValueField()
	table.RegisterReference(ref, v)

	got, ok := table.TryGetReference(ref)
	require.True(t, ok)
	require.Equal(t, v.Pointer(), got.Pointer())

	_, ok = table.TryGetReference(7)
	require.False(t, ok)
	require.Equal(t, 1, table.Len())
}

func TestTypeTable(t *testing.T) {
	var table TypeTable

	id, isNew := table.GetOrCreateTypeID(reflect.TypeFor[node]())
	require.True(t, isNew)
	require.Equal(t, uint32(1), id)

	id, isNew = table.GetOrCreateTypeID(reflect.TypeFor[node]())
	require.False(t, isNew)
	require.Equal(t, uint32(1), id)

	id = table.RegisterType(TypeEntry{Descriptor: typedesc.Named("remote.Type")})
	require.Equal(t, uint32(2), id)

	entry, ok := table.TryGetType(2)
	require.True(t, ok)
	require.Nil(t, entry.Type)
	require.Equal(t, "remote.Type", entry.Descriptor.Name)

	_, ok = table.TryGetType(0)
	require.False(t, ok)
	_, ok = table.TryGetType(3)
	require.False(t, ok)

	table.Reset()
	require.Equal(t, 0, table.Len())
	id, _ = table.GetOrCreateTypeID(reflect.TypeFor[int]())
	require.Equal(t, uint32(1), id)
}

func TestCopyTable(t *testing.T) {
	var table CopyTable
	src := &node{}
	id, _ := IdentityOf(reflect.ValueOf(src))

	_, ok := table.TryGetCopy(id)
	require.False(t, ok)

	clone := reflect.ValueOf(&node{})
	table.RecordCopy(id, clone)
	got, ok := table.TryGetCopy(id)
	require.True(t, ok)
	require.Equal(t, clone.Pointer(), got.Pointer())

	table.Reset()
	require.Equal(t, 0, table.Len())
}

func TestSession_Depth(t *testing.T) {
	s, err := New(WithMaxDepth(2))
	require.NoError(t, err)
	require.Equal(t, 2, s.MaxDepth())

	require.NoError(t, s.Enter())
	require.NoError(t, s.Enter())
	require.ErrorIs(t, s.Enter(), errs.ErrMaxDepthExceeded)
	require.Equal(t, 2, s.Depth())

	s.Leave()
	require.NoError(t, s.Enter())

	s.Reset()
	require.Equal(t, 0, s.Depth())
	s.Leave()
	require.Equal(t, 0, s.Depth())
}

func TestSession_InvalidOptions(t *testing.T) {
	_, err := New(WithMaxDepth(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewPool(WithMaxRetainedEntries(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestPool(t *testing.T) {
	p, err := NewPool(WithMaxDepth(5), WithMaxRetainedEntries(2))
	require.NoError(t, err)

	s := p.Get()
	require.Equal(t, 5, s.MaxDepth())
	s.References.MarkValueField()
	id, _ := IdentityOf(reflect.ValueOf(&node{}))
	s.References.GetOrCreateReferenceID(id)
	p.Put(s)

	s = p.Get()
	require.Equal(t, uint32(0), s.References.CurrentReferenceID())
	require.Equal(t, 0, s.References.Len())
	require.Equal(t, 0, s.Depth())

	for range 3 {
		s.Types.RegisterType(TypeEntry{})
	}
	require.NotPanics(t, func() { p.Put(s) })
	require.NotPanics(t, func() { p.Put(nil) })
}
