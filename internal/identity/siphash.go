package identity

// SipHash-1-3 (1 compression round, 3 finalization rounds), following the
// reference construction in https://www.aumasson.jp/siphash/siphash.pdf.
// No example repo in the retrieval pack carries a siphash implementation
// (go-siphash, dchest/siphash, etc. are all absent from every go.mod in
// the corpus), and the standard library has none either, so this is a
// deliberate, narrowly-scoped stdlib primitive rather than an ambient
// concern we'd otherwise reach for a library to cover — see DESIGN.md.
//
// The key is fixed at zero rather than caller-supplied: identity
// derivation must produce the same id for the same (kind, key) pair
// across every process and every build of this program, matching the
// all-zero default key a keyless SipHasher13 starts with.
var siphashKey = [16]byte{}

func rotl64(x uint64, b uint) uint64 {
	return (x << b) | (x >> (64 - b))
}

func sipRound(v0, v1, v2, v3 *uint64) {
	*v0 += *v1
	*v1 = rotl64(*v1, 13)
	*v1 ^= *v0
	*v0 = rotl64(*v0, 32)
	*v2 += *v3
	*v3 = rotl64(*v3, 16)
	*v3 ^= *v2
	*v0 += *v3
	*v3 = rotl64(*v3, 21)
	*v3 ^= *v0
	*v2 += *v1
	*v1 = rotl64(*v1, 17)
	*v1 ^= *v2
	*v2 = rotl64(*v2, 32)
}

// siphash13 computes SipHash-1-3 of data under the fixed internal key.
func siphash13(data []byte) uint64 {
	k0 := le64(siphashKey[0:8])
	k1 := le64(siphashKey[8:16])

	v0 := k0 ^ 0x736f6d6570736575
	v1 := k1 ^ 0x646f72616e646f6d
	v2 := k0 ^ 0x6c7967656e657261
	v3 := k1 ^ 0x7465646279746573

	length := len(data)
	end := length - (length % 8)

	for i := 0; i < end; i += 8 {
		m := le64(data[i : i+8])
		v3 ^= m
		sipRound(&v0, &v1, &v2, &v3) // c = 1
		v0 ^= m
	}

	var last uint64 = uint64(length&0xff) << 56
	tail := data[end:length]
	for i := 0; i < len(tail); i++ {
		last |= uint64(tail[i]) << (8 * uint(i))
	}

	v3 ^= last
	sipRound(&v0, &v1, &v2, &v3)
	v0 ^= last

	v2 ^= 0xff
	for i := 0; i < 3; i++ { // d = 3
		sipRound(&v0, &v1, &v2, &v3)
	}

	return v0 ^ v1 ^ v2 ^ v3
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}

func le64Bytes(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}
