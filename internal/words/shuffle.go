package words

import "math/rand"

// maxShuffleAttempts bounds how often Shuffle retries to avoid returning the input.
const maxShuffleAttempts = 5

// Shuffle returns a random permutation of w's letters. It retries a few times to
// return something different from w; words like "AAAA" come back unchanged.
func Shuffle(w string, rng *rand.Rand) string {
	if len(w) < 2 {
		return w
	}
	b := []byte(w)
	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		rng.Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })
		if string(b) != w {
			break
		}
	}
	return string(b)
}
