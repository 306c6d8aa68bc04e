// internal/game/validate.go
//
// Pure move validation for the sequence-memory game. No I/O; the session
// service feeds it the last accepted sequence and persists the verdict.
package game

// MoveResult is the verdict on a single submission. NewColor is always the
// final element of the submitted sequence so that rejected moves still carry
// the attempted color into the audit log.
type MoveResult struct {
	IsCorrect bool
	NewColor  string
}

// ValidateMove checks a submitted sequence against the previously accepted
// one. A submission is correct iff:
//
//  1. it reproduces expected exactly, position by position, and
//  2. it is exactly one element longer than expected (length 1 on the first
//     move of a game), and
//  3. its final element is one of the game's allowed colors.
//
// The caller must reject empty submissions before invoking ValidateMove.
func ValidateMove(expected, submitted, allowed []string) MoveResult {
	res := MoveResult{
		IsCorrect: true,
		NewColor:  submitted[len(submitted)-1],
	}

	for i := range expected {
		if i >= len(submitted) || submitted[i] != expected[i] {
			res.IsCorrect = false
			break
		}
	}

	if len(submitted) != len(expected)+1 {
		res.IsCorrect = false
	}

	if !contains(allowed, res.NewColor) {
		res.IsCorrect = false
	}
	return res
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
