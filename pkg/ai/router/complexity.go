package router

import (
	"strings"
	"unicode/utf8"
)

// highVolumeThreshold is the recent-session query count above which a
// session is considered busy.
const highVolumeThreshold = 10

// codeMarkers suggest the text carries code or tabular content.
var codeMarkers = []string{"```", "\t", "| ", "SELECT ", "select ", "func ", "class ", "def "}

// ScoreComplexity estimates how demanding a query is on a 0-10 scale.
// The router consumes this as an external signal; callers may supply
// their own score instead.
func ScoreComplexity(text string, recentQueryVolume int) int {
	score := 0

	n := utf8.RuneCountInString(text)
	if n > 500 {
		score += 2
	} else if n > 200 {
		score += 1
	}

	for _, marker := range codeMarkers {
		if strings.Contains(text, marker) {
			score += 2
			break
		}
	}

	// Multiple questions in one message raise the bar
	questions := strings.Count(text, "?") + strings.Count(text, "？")
	if questions >= 2 {
		if questions > 3 {
			questions = 3
		}
		score += questions
	}

	if recentQueryVolume > highVolumeThreshold {
		score += 1
	}

	if score > 10 {
		score = 10
	}
	return score
}
