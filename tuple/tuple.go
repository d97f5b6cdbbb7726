// Package tuple provides fixed-arity value tuples.
//
// Tuples are values; a *TupleN is the reference variant and is identity tracked
// like any other pointer. Tuple8 carries its eighth and later slots in Rest, which
// is itself a tuple, so longer tuples nest:
//
//	t := tuple.New8(1, 2, 3, 4, 5, 6, 7, tuple.New2("eight", "nine"))
package tuple

// Tuple is implemented by every tuple type.
type Tuple interface {
	// Arity returns the number of slots, counting Rest as one slot.
	Arity() int
}

// Tuple1 is a tuple of one value.
type Tuple1[T1 any] struct {
	Item1 T1
}

// New1 returns a Tuple1.
func New1[T1 any](item1 T1) Tuple1[T1] {
	return Tuple1[T1]{Item1: item1}
}

// Arity returns 1.
func (Tuple1[T1]) Arity() int {
	return 1
}

// Tuple2 is a tuple of 2 values.
type Tuple2[T1, T2 any] struct {
	Item1 T1
	Item2 T2
}

// New2 returns a Tuple2.
func New2[T1, T2 any](item1 T1, item2 T2) Tuple2[T1, T2] {
	return Tuple2[T1, T2]{Item1: item1, Item2: item2}
}

// Arity returns 2.
func (Tuple2[T1, T2]) Arity() int {
	return 2
}

// Tuple3 is a tuple of 3 values.
type Tuple3[T1, T2, T3 any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
}

// New3 returns a Tuple3.
func New3[T1, T2, T3 any](item1 T1, item2 T2, item3 T3) Tuple3[T1, T2, T3] {
	return Tuple3[T1, T2, T3]{Item1: item1, Item2: item2, Item3: item3}
}

// Arity returns 3.
func (Tuple3[T1, T2, T3]) Arity() int {
	return 3
}

// Tuple4 is a tuple of 4 values.
type Tuple4[T1, T2, T3, T4 any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
}

// New4 returns a Tuple4.
func New4[T1, T2, T3, T4 any](item1 T1, item2 T2, item3 T3, item4 T4) Tuple4[T1, T2, T3, T4] {
	return Tuple4[T1, T2, T3, T4]{Item1: item1, Item2: item2, Item3: item3, Item4: item4}
}

// Arity returns 4.
func (Tuple4[T1, T2, T3, T4]) Arity() int {
	return 4
}

// Tuple5 is a tuple of 5 values.
type Tuple5[T1, T2, T3, T4, T5 any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
	Item5 T5
}

// New5 returns a Tuple5.
func New5[T1, T2, T3, T4, T5 any](item1 T1, item2 T2, item3 T3, item4 T4, item5 T5) Tuple5[T1, T2, T3, T4, T5] {
	return Tuple5[T1, T2, T3, T4, T5]{Item1: item1, Item2: item2, Item3: item3, Item4: item4, Item5: item5}
}

// Arity returns 5.
func (Tuple5[T1, T2, T3, T4, T5]) Arity() int {
	return 5
}

// Tuple6 is a tuple of 6 values.
type Tuple6[T1, T2, T3, T4, T5, T6 any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
	Item5 T5
	Item6 T6
}

// New6 returns a Tuple6.
func New6[T1, T2, T3, T4, T5, T6 any](item1 T1, item2 T2, item3 T3, item4 T4, item5 T5, item6 T6) Tuple6[T1, T2, T3, T4, T5, T6] {
	return Tuple6[T1, T2, T3, T4, T5, T6]{Item1: item1, Item2: item2, Item3: item3, Item4: item4, Item5: item5, Item6: item6}
}

// Arity returns 6.
func (Tuple6[T1, T2, T3, T4, T5, T6]) Arity() int {
	return 6
}

// Tuple7 is a tuple of 7 values.
type Tuple7[T1, T2, T3, T4, T5, T6, T7 any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
	Item5 T5
	Item6 T6
	Item7 T7
}

// New7 returns a Tuple7.
func New7[T1, T2, T3, T4, T5, T6, T7 any](item1 T1, item2 T2, item3 T3, item4 T4, item5 T5, item6 T6, item7 T7) Tuple7[T1, T2, T3, T4, T5, T6, T7] {
	return Tuple7[T1, T2, T3, T4, T5, T6, T7]{Item1: item1, Item2: item2, Item3: item3, Item4: item4, Item5: item5, Item6: item6, Item7: item7}
}

// Arity returns 7.
func (Tuple7[T1, T2, T3, T4, T5, T6, T7]) Arity() int {
	return 7
}

// Tuple8 is a tuple of seven values followed by a nested Rest tuple.
type Tuple8[T1, T2, T3, T4, T5, T6, T7, TRest any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
	Item5 T5
	Item6 T6
	Item7 T7
	Rest  TRest
}

// New8 returns a Tuple8.
func New8[T1, T2, T3, T4, T5, T6, T7, TRest any](item1 T1, item2 T2, item3 T3, item4 T4, item5 T5, item6 T6, item7 T7, rest TRest) Tuple8[T1, T2, T3, T4, T5, T6, T7, TRest] {
	return Tuple8[T1, T2, T3, T4, T5, T6, T7, TRest]{Item1: item1, Item2: item2, Item3: item3, Item4: item4, Item5: item5, Item6: item6, Item7: item7, Rest: rest}
}

// Arity returns 8.
func (Tuple8[T1, T2, T3, T4, T5, T6, T7, TRest]) Arity() int {
	return 8
}
