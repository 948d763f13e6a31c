package util

import "crypto/subtle"

func CopyBytes(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// WipeBytes best-effort zeroes the provided byte slice in place.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// SecureCompare reports whether a and b are equal without leaking timing
// information about where they differ. Unequal-length inputs are padded
// to a common length before the byte-wise comparison so that a length
// mismatch is indistinguishable from a value mismatch.
func SecureCompare(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	ap := make([]byte, n)
	bp := make([]byte, n)
	copy(ap, a)
	copy(bp, b)
	sameLen := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	sameVal := subtle.ConstantTimeCompare(ap, bp)
	return sameLen&sameVal == 1
}

// SecureCompareString is SecureCompare over strings.
func SecureCompareString(a, b string) bool {
	return SecureCompare([]byte(a), []byte(b))
}
