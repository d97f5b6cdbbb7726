package wellknown

import "fmt"

// BitVector32 is a fixed set of 32 flag bits.
type BitVector32 uint32

// Get reports whether bit i is set.
func (b BitVector32) Get(i uint) bool {
	return b&(1<<i) != 0
}

// Set returns b with bit i set to on.
func (b BitVector32) Set(i uint, on bool) BitVector32 {
	if on {
		return b | 1<<i
	}

	return b &^ (1 << i)
}

// Data returns the raw bits.
func (b BitVector32) Data() uint32 {
	return uint32(b)
}

func (b BitVector32) String() string {
	return fmt.Sprintf("BitVector32{%032b}", uint32(b))
}
