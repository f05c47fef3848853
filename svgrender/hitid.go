package svgrender

import "image/color"

// MaxHitID is the largest id an allocator may return.
const MaxHitID = 1<<24 - 1

// highBits lists the 8 subsets of {R, G, B} (bit 0 for R, 1 for G, 2 for B)
// whose high bit is set, indexed by the low 3 bits of an id.
// Consecutive ids always differ in at least one high bit.
var highBits = [8]uint8{0b000, 0b111, 0b001, 0b110, 0b010, 0b101, 0b100, 0b011}

// highBitsIndex is the inverse of highBits.
var highBitsIndex = func() (out [8]uint8) {
	for i, m := range highBits {
		out[m] = uint8(i)
	}
	return out
}()

// IDColor returns the opaque color painting id on the hit surface.
// Bits 3..9 go into the low 7 bits of R, 10..16 into G and 17..23 into B;
// the low 3 bits select which channels get their high bit set.
// Id 0 is the background, black.
func IDColor(id uint32) color.RGBA {
	id &= MaxHitID
	mask := highBits[id&7]
	r := uint8(id>>3) & 0x7f
	g := uint8(id>>10) & 0x7f
	b := uint8(id>>17) & 0x7f
	if mask&1 != 0 {
		r |= 0x80
	}
	if mask&2 != 0 {
		g |= 0x80
	}
	if mask&4 != 0 {
		b |= 0x80
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// IDFromColor inverts IDColor. ok is false for non opaque colors,
// which cannot have been painted by an IdSink.
func IDFromColor(c color.RGBA) (id uint32, ok bool) {
	if c.A != 0xff {
		return 0, false
	}
	mask := c.R>>7 | (c.G>>7)<<1 | (c.B>>7)<<2
	id = uint32(highBitsIndex[mask]) |
		uint32(c.R&0x7f)<<3 |
		uint32(c.G&0x7f)<<10 |
		uint32(c.B&0x7f)<<17
	return id, true
}
