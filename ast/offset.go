package ast

// ByteOffset converts an offset in UTF-16 code units, as the host parser reports them, into a byte
// offset into the UTF-8 string s. Offsets past the end of s are clamped to len(s).
func ByteOffset(s string, units int) int {
	n := 0
	for i, r := range s {
		if units <= n {
			return i
		}
		n += unitLen(r)
	}
	return len(s)
}

// UnitOffset converts a byte offset into s into an offset in UTF-16 code units.
func UnitOffset(s string, offset int) int {
	if offset < 0 {
		return 0
	} else if len(s) < offset {
		offset = len(s)
	}
	n := 0
	for _, r := range s[:offset] {
		n += unitLen(r)
	}
	return n
}

// unitLen is the number of UTF-16 code units of r; runes outside the BMP take a surrogate pair.
func unitLen(r rune) int {
	if 0x10000 <= r {
		return 2
	}
	return 1
}
