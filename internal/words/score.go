// internal/words/score.go
//
// Scrabble-weighted word scoring.

package words

// letterPoints holds classic Scrabble tile values for A–Z.
var letterPoints = [26]int{
	1, 3, 3, 2, 1, 4, 2, 4, 1, 8, 5, 1, 3, // A–M
	1, 1, 3, 10, 1, 1, 1, 1, 4, 4, 8, 4, 10, // N–Z
}

// PointsMultiplier scales the tile sum into game points.
const PointsMultiplier = 10

// Score returns the sum of tile values for w times PointsMultiplier.
// Letters are matched case-insensitively; other characters score zero.
//
//	Score("CAT") == (3 + 1 + 1) * 10 == 50
func Score(w string) int {
	sum := 0
	for i := 0; i < len(w); i++ {
		b := w[i]
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		if j := idx(b); j >= 0 {
			sum += letterPoints[j]
		}
	}
	return sum * PointsMultiplier
}
