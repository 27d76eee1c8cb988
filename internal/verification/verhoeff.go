// Package verification implements the Aadhar identity verification engine:
// checksum validation, encrypted at-rest storage, the append-only audit
// trail, and the provider pipeline that drives the verification state
// machine.
package verification

// Verhoeff dihedral group tables. d is the multiplication table, p the
// position-dependent permutation table, inv the inverse lookup.
var (
	verhoeffD = [10][10]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{1, 2, 3, 4, 0, 6, 7, 8, 9, 5},
		{2, 3, 4, 0, 1, 7, 8, 9, 5, 6},
		{3, 4, 0, 1, 2, 8, 9, 5, 6, 7},
		{4, 0, 1, 2, 3, 9, 5, 6, 7, 8},
		{5, 9, 8, 7, 6, 0, 4, 3, 2, 1},
		{6, 5, 9, 8, 7, 1, 0, 4, 3, 2},
		{7, 6, 5, 9, 8, 2, 1, 0, 4, 3},
		{8, 7, 6, 5, 9, 3, 2, 1, 0, 4},
		{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
	}

	verhoeffP = [8][10]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{1, 5, 7, 6, 2, 8, 3, 0, 9, 4},
		{5, 8, 0, 3, 7, 9, 6, 1, 4, 2},
		{8, 9, 1, 6, 0, 4, 3, 5, 2, 7},
		{9, 4, 5, 3, 1, 2, 6, 8, 7, 0},
		{4, 2, 8, 6, 5, 7, 3, 9, 0, 1},
		{2, 7, 9, 3, 8, 0, 6, 4, 1, 5},
		{7, 0, 4, 6, 9, 1, 3, 2, 5, 8},
	}

	verhoeffInv = [10]int{0, 4, 3, 2, 1, 5, 6, 7, 8, 9}
)

// IsWellFormed reports whether s is exactly twelve ASCII digits.
func IsWellFormed(s string) bool {
	if len(s) != 12 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidChecksum runs the Verhoeff algorithm over a well-formed Aadhar number.
// The digits are processed right to left; the number is valid when the final
// checksum is zero. Callers must check IsWellFormed first; anything else
// returns false.
func ValidChecksum(s string) bool {
	if !IsWellFormed(s) {
		return false
	}

	checksum := 0
	n := len(s)
	for i := 0; i < n; i++ {
		digit := int(s[n-1-i] - '0')
		checksum = verhoeffD[checksum][verhoeffP[i%8][digit]]
	}
	return checksum == 0
}

// ChecksumDigit computes the Verhoeff check digit for a digit string, used to
// construct valid numbers in fixtures and mock providers.
func ChecksumDigit(s string) int {
	checksum := 0
	n := len(s)
	for i := 0; i < n; i++ {
		digit := int(s[n-1-i] - '0')
		checksum = verhoeffD[checksum][verhoeffP[(i+1)%8][digit]]
	}
	return verhoeffInv[checksum]
}
