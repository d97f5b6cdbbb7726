package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/session"
)

type address struct {
	Street string
	City   string
	Zip    *string
}

type customer struct {
	ID       int64
	Name     string
	Tags     []string
	Address  *address
	Scores   map[string]float64
	Internal string `graft:"-"`
	Note     string `graft:"10"`
	After    bool
}

func TestStruct_RoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	zip := "94107"

	want := customer{
		ID:       7,
		Name:     "Ada",
		Tags:     []string{"vip", "early"},
		Address:  &address{Street: "1 Main St", City: "Springfield", Zip: &zip},
		Scores:   map[string]float64{"q1": 1.5, "q2": -2},
		Internal: "not written",
		Note:     "tagged",
		After:    true,
	}
	got := roundTrip(t, reg, want)

	want.Internal = ""
	require.Equal(t, want, got)
}

func TestStruct_ZeroFieldsOmitted(t *testing.T) {
	reg := newTestRegistry(t)

	empty := encode(t, reg, customer{})
	// Header and end marker only.
	require.Len(t, empty, 2)

	withName := encode(t, reg, customer{Name: "x"})
	require.Greater(t, len(withName), len(empty))
}

type recordV1 struct {
	ID   int
	Name string
}

type recordV2 struct {
	ID      int
	Name    string
	Labels  map[string]string
	Nested  *recordV2
	Comment string `graft:"9"`
}

func TestStruct_SkipsUnknownFields(t *testing.T) {
	reg := newTestRegistry(t)

	data := encode(t, reg, recordV2{
		ID:      3,
		Name:    "three",
		Labels:  map[string]string{"a": "b"},
		Nested:  &recordV2{ID: 4, Labels: map[string]string{"c": "d"}},
		Comment: "dropped",
	})

	got := decode[recordV1](t, reg, data)
	require.Equal(t, recordV1{ID: 3, Name: "three"}, got)
}

type part struct {
	Name string
	Next *part
}

type assemblyV1 struct {
	Serial int     `graft:"0"`
	Main   *part   `graft:"2"`
	Spares []*part `graft:"3"`
}

type assemblyV2 struct {
	Serial int     `graft:"0"`
	Backup *part   `graft:"1"`
	Main   *part   `graft:"2"`
	Spares []*part `graft:"3"`
}

func TestStruct_ReferenceIntoSkippedField(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("shared with a known field", func(t *testing.T) {
		p := &part{Name: "gear"}
		data := encode(t, reg, assemblyV2{Serial: 1, Backup: p, Main: p, Spares: []*part{p, p}})

		got := decode[assemblyV1](t, reg, data)
		require.Equal(t, 1, got.Serial)
		require.Equal(t, "gear", got.Main.Name)
		require.Len(t, got.Spares, 2)
		require.Same(t, got.Main, got.Spares[0])
		require.Same(t, got.Main, got.Spares[1])
	})

	t.Run("nested inside the skipped value", func(t *testing.T) {
		inner := &part{Name: "inner"}
		data := encode(t, reg, assemblyV2{Backup: &part{Name: "outer", Next: inner}, Main: inner})

		got := decode[assemblyV1](t, reg, data)
		require.Equal(t, &part{Name: "inner"}, got.Main)
	})

	t.Run("cycle inside the skipped value", func(t *testing.T) {
		loop := &part{Name: "loop"}
		loop.Next = loop
		data := encode(t, reg, assemblyV2{Serial: 2, Backup: loop, Main: loop})

		got := decode[assemblyV1](t, reg, data)
		require.Equal(t, 2, got.Serial)
		require.Equal(t, "loop", got.Main.Name)
		require.Same(t, got.Main, got.Main.Next)
	})

	t.Run("later fields keep their ids", func(t *testing.T) {
		a, b := &part{Name: "a"}, &part{Name: "b"}
		data := encode(t, reg, assemblyV2{Backup: a, Main: b, Spares: []*part{a, b}})

		got := decode[assemblyV1](t, reg, data)
		require.Equal(t, "b", got.Main.Name)
		require.Equal(t, "a", got.Spares[0].Name)
		require.Same(t, got.Main, got.Spares[1])
	})

	t.Run("reader without registry", func(t *testing.T) {
		p := &part{Name: "gear"}
		data := encode(t, reg, assemblyV2{Backup: p, Main: p})

		ser, err := NewSerializer[assemblyV1](reg)
		require.NoError(t, err)
		sess, err := session.New()
		require.NoError(t, err)
		r, err := buffers.NewBytesReader(data, sess)
		require.NoError(t, err)
		_, err = ser.Deserialize(r)
		require.ErrorIs(t, err, errs.ErrUnsupportedType)
	})
}

type embeddedBase struct {
	Kind string
}

type withEmbedded struct {
	embeddedBase
	Value int
}

type Exported struct {
	Kind string
}

type withExportedEmbedded struct {
	Exported
	Value int
}

func TestStruct_Embedded(t *testing.T) {
	reg := newTestRegistry(t)

	got := roundTrip(t, reg, withExportedEmbedded{Exported: Exported{Kind: "k"}, Value: 2})
	require.Equal(t, "k", got.Kind)
	require.Equal(t, 2, got.Value)

	// Unexported embedded structs are not encoded.
	require.Equal(t, withEmbedded{Value: 5}, roundTrip(t, reg, withEmbedded{embeddedBase: embeddedBase{Kind: "lost"}, Value: 5}))
}

type onlyPrivate struct {
	n int
}

type duplicateIDs struct {
	A int `graft:"1"`
	B int `graft:"1"`
}

type badTag struct {
	A int `graft:"first"`
}

type holdsChannel struct {
	Name string
	Ch   chan int
}

type holdsFunc struct {
	Callbacks map[string]func()
}

func TestStruct_Unsupported(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := NewSerializer[onlyPrivate](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewSerializer[duplicateIDs](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewSerializer[badTag](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewSerializer[holdsChannel](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewSerializer[[]*holdsFunc](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewDeepCopier[holdsChannel](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

type Color int32

const (
	Red Color = iota + 1
	Green
)

type palette struct {
	Primary Color
	Others  []Color
}

func TestStruct_EnumFields(t *testing.T) {
	reg := newTestRegistry(t)

	want := palette{Primary: Green, Others: []Color{Red, Color(1000), Color(-5)}}
	require.Equal(t, want, roundTrip(t, reg, want))
}
