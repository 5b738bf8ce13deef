package words

// Counts is a per-letter frequency table for A–Z.
type Counts [26]int

// CountLetters builds the frequency table of an uppercase word.
// Bytes outside A–Z are ignored.
func CountLetters(w string) Counts {
	var c Counts
	for i := 0; i < len(w); i++ {
		if j := idx(w[i]); j >= 0 {
			c[j]++
		}
	}
	return c
}

// CanForm reports whether w can be spelled from the letters in src,
// using each letter at most as many times as src holds it (multiset subset).
func CanForm(w string, src Counts) bool {
	if len(w) == 0 {
		return false
	}
	var used Counts
	for i := 0; i < len(w); i++ {
		j := idx(w[i])
		if j < 0 {
			return false
		}
		used[j]++
		if used[j] > src[j] {
			return false
		}
	}
	return true
}

// IsPermutation reports whether a and b use exactly the same letters.
func IsPermutation(a, b string) bool {
	return len(a) == len(b) && CountLetters(a) == CountLetters(b)
}

// idx maps an uppercase ASCII letter to 0..25, or -1.
func idx(b byte) int {
	if b < 'A' || b > 'Z' {
		return -1
	}
	return int(b - 'A')
}
