package binary

import (
	"encoding/binary"
	"math/bits"
)

// PutUint stores the low len(b) bytes of v in b.
func PutUint(b []byte, v uint64, order binary.ByteOrder) {
	n := len(b)
	for i := range n {
		shift := 8 * uint(i)
		if order == binary.BigEndian {
			b[n-1-i] = byte(v >> shift)
		} else {
			b[i] = byte(v >> shift)
		}
	}
}

// Lookup3 is Bob Jenkins' hashlittle with a zero seed, the checksum stored
// after superblocks, object headers and other metadata since HDF5 1.8.
func Lookup3(data []byte) uint32 {
	a := 0xdeadbeef + uint32(len(data))
	b, c := a, a

	for len(data) > 12 {
		a += binary.LittleEndian.Uint32(data[0:])
		b += binary.LittleEndian.Uint32(data[4:])
		c += binary.LittleEndian.Uint32(data[8:])
		a, b, c = lookup3Mix(a, b, c)
		data = data[12:]
	}
	if len(data) == 0 {
		return c
	}

	// The tail is added byte by byte, so a short final block behaves as if
	// it were zero padded.
	var tail [12]byte
	copy(tail[:], data)
	a += binary.LittleEndian.Uint32(tail[0:])
	b += binary.LittleEndian.Uint32(tail[4:])
	c += binary.LittleEndian.Uint32(tail[8:])
	_, _, c = lookup3Final(a, b, c)
	return c
}

func lookup3Mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= bits.RotateLeft32(c, 4)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 6)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 8)
	b += a
	a -= c
	a ^= bits.RotateLeft32(c, 16)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 19)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 4)
	b += a
	return a, b, c
}

func lookup3Final(a, b, c uint32) (uint32, uint32, uint32) {
	c ^= b
	c -= bits.RotateLeft32(b, 14)
	a ^= c
	a -= bits.RotateLeft32(c, 11)
	b ^= a
	b -= bits.RotateLeft32(a, 25)
	c ^= b
	c -= bits.RotateLeft32(b, 16)
	a ^= c
	a -= bits.RotateLeft32(c, 4)
	b ^= a
	b -= bits.RotateLeft32(a, 14)
	c ^= b
	c -= bits.RotateLeft32(b, 24)
	return a, b, c
}

// Fletcher32 computes the checksum appended to chunks by the fletcher32
// filter. Words are taken most significant byte first, and an odd trailing
// byte counts as the high byte of a final word.
func Fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32
	fold := func(x uint32) uint32 { return (x & 0xffff) + (x >> 16) }

	words := len(data) / 2
	for words > 0 {
		// 360 words keep both sums inside 32 bits between folds.
		block := min(words, 360)
		words -= block
		for range block {
			sum1 += uint32(data[0])<<8 | uint32(data[1])
			sum2 += sum1
			data = data[2:]
		}
		sum1 = fold(sum1)
		sum2 = fold(sum2)
	}
	if len(data) == 1 {
		sum1 += uint32(data[0]) << 8
		sum2 += sum1
		sum1 = fold(sum1)
		sum2 = fold(sum2)
	}
	sum1 = fold(sum1)
	sum2 = fold(sum2)
	return sum2<<16 | sum1
}
