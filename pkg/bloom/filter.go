// Package bloom implements the membership filter used to give SSTables a
// cheap negative-lookup path: a fixed-width bit array probed by a small
// number of independent hashes, guaranteeing no false negatives.
package bloom

// Filter is a probabilistic set-membership structure.
//   - False positives possible (may say a key exists when it doesn't).
//   - False negatives impossible (if it says a key doesn't exist, it
//     definitely doesn't).
type Filter struct {
	bits      []byte
	width     uint64 // bits
	hashCount int
}

// DefaultWidth and DefaultHashCount match the reference tuning: 2^20 bits
// (128 KiB) per table and three probes per key.
const (
	DefaultWidth     = 1 << 20
	DefaultHashCount = 3
)

// New allocates an empty filter with the given bit width and hash count.
func New(width uint64, hashCount int) *Filter {
	if width == 0 {
		width = DefaultWidth
	}
	if hashCount <= 0 {
		hashCount = DefaultHashCount
	}
	return &Filter{
		bits:      make([]byte, (width+7)/8),
		width:     width,
		hashCount: hashCount,
	}
}

// NewDefault allocates a filter using the reference width and hash count.
func NewDefault() *Filter {
	return New(DefaultWidth, DefaultHashCount)
}

// Add sets the bits for s under every hash probe.
func (f *Filter) Add(s []byte) {
	for i := 1; i <= f.hashCount; i++ {
		f.setBit(f.hash(s, uint64(i)))
	}
}

// MightContain reports whether every probe bit for s is set. A false
// result is a proof of absence; a true result is not a proof of presence.
func (f *Filter) MightContain(s []byte) bool {
	for i := 1; i <= f.hashCount; i++ {
		if !f.getBit(f.hash(s, uint64(i))) {
			return false
		}
	}
	return true
}

// hash computes the i-th polynomial rolling hash of s modulo the filter
// width, using seed i as the multiplier at every step:
//
//	h_i(s) = (((0*i + s[0])*i + s[1])*i + ... )*i + s[n-1]  (mod width)
//
// Arithmetic is carried out in a 64-bit unsigned modulus, matching the
// reference implementation's machine-word size_t.
func (f *Filter) hash(s []byte, seed uint64) uint64 {
	var h uint64
	for _, b := range s {
		h = h*seed + uint64(b)
	}
	return h % f.width
}

func (f *Filter) setBit(pos uint64) {
	f.bits[pos/8] |= 1 << (pos % 8)
}

func (f *Filter) getBit(pos uint64) bool {
	return f.bits[pos/8]&(1<<(pos%8)) != 0
}

// Width returns the number of bits addressed by the filter.
func (f *Filter) Width() uint64 { return f.width }

// HashCount returns the number of probes per key.
func (f *Filter) HashCount() int { return f.hashCount }

// Serialize emits ceil(width/8) bytes; bit j of byte b is logical bit
// 8*b+j (LSB-first within each byte).
func (f *Filter) Serialize() []byte {
	out := make([]byte, len(f.bits))
	copy(out, f.bits)
	return out
}

// Deserialize reconstructs a filter of the given width and hash count from
// bytes produced by Serialize. Excess bits beyond width (when width isn't a
// multiple of 8) are ignored, matching the wire format.
func Deserialize(buf []byte, width uint64, hashCount int) *Filter {
	f := New(width, hashCount)
	n := copy(f.bits, buf)
	// Zero any bits past width in the final byte so extra high bits in a
	// caller-supplied buffer never leak into MightContain results.
	if n > 0 {
		lastByte := len(f.bits) - 1
		usedBitsInLast := width - uint64(lastByte)*8
		if usedBitsInLast < 8 {
			mask := byte(1<<usedBitsInLast) - 1
			f.bits[lastByte] &= mask
		}
	}
	return f
}
