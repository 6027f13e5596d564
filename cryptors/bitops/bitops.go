// bitops project bitops.go
package bitops

// LetterSet is a set of alphabet indices packed into the low 26 bits.
type LetterSet uint32

const full LetterSet = 1<<26 - 1

func (s LetterSet) SetBit(bit int) LetterSet {
	return s | 1<<uint(bit)
}

func (s LetterSet) GetBit(bit int) bool {
	return s&(1<<uint(bit)) != 0
}

// Len returns the number of members.
func (s LetterSet) Len() int {
	n := 0
	for ; s != 0; s &= s - 1 {
		n++
	}
	return n
}

// Full reports whether all 26 letters are members.
func (s LetterSet) Full() bool {
	return s&full == full
}
