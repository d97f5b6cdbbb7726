package wellknown

import (
	"math/big"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Hi, Lo uint64
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Uint128From64 widens v.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Int128From64 sign-extends v.
func Int128From64(v int64) Int128 {
	return Int128{Hi: v >> 63, Lo: uint64(v)} //nolint:gosec
}

var (
	// MaxUint128 is the largest Uint128.
	MaxUint128 = Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}
	// MaxInt128 is the largest Int128.
	MaxInt128 = Int128{Hi: 1<<63 - 1, Lo: ^uint64(0)}
	// MinInt128 is the smallest Int128.
	MinInt128 = Int128{Hi: -1 << 63}
)

// Add returns u+v, wrapping on overflow.
func (u Uint128) Add(v Uint128) Uint128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)

	return Uint128{Hi: hi, Lo: lo}
}

// Cmp compares u and v and returns -1, 0 or +1.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi < v.Hi || (u.Hi == v.Hi && u.Lo < v.Lo):
		return -1
	case u == v:
		return 0
	default:
		return 1
	}
}

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)

	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	return u.Big().String()
}

// Neg returns -i, wrapping for MinInt128.
func (i Int128) Neg() Int128 {
	lo, borrow := bits.Sub64(0, i.Lo, 0)
	hi, _ := bits.Sub64(0, uint64(i.Hi), borrow) //nolint:gosec

	return Int128{Hi: int64(hi), Lo: lo} //nolint:gosec
}

// Sign returns -1, 0 or +1.
func (i Int128) Sign() int {
	switch {
	case i.Hi < 0:
		return -1
	case i.Hi == 0 && i.Lo == 0:
		return 0
	default:
		return 1
	}
}

// Cmp compares i and j and returns -1, 0 or +1.
func (i Int128) Cmp(j Int128) int {
	switch {
	case i.Hi < j.Hi || (i.Hi == j.Hi && i.Lo < j.Lo):
		return -1
	case i == j:
		return 0
	default:
		return 1
	}
}

// Big returns i as a big.Int.
func (i Int128) Big() *big.Int {
	if i.Sign() >= 0 {
		return Uint128{Hi: uint64(i.Hi), Lo: i.Lo}.Big() //nolint:gosec
	}
	neg := i.Neg()
	b := Uint128{Hi: uint64(neg.Hi), Lo: neg.Lo}.Big() //nolint:gosec

	return b.Neg(b)
}

func (i Int128) String() string {
	return i.Big().String()
}
