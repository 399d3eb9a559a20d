// Package verdict extracts a structured battle result from generated text.
//
// GitHub battles ask the generator to open with a result line:
//
//	Winner: <name> (Score: <0-100>/100) | Loser: <name> (Score: <0-100>/100)
//
// followed by the narrative. Text that does not follow the convention is not
// an error: it yields an unmatched Verdict carrying the raw text.
package verdict

import (
	"regexp"
	"strconv"
	"strings"
)

// maxScore is the largest score the result line may declare.
const maxScore = 100

var resultLine = regexp.MustCompile(
	`(?i)^\s*Winner:\s*([\w.-]+)\s*\(\s*Score:\s*(\d{1,3})(?:\s*/\s*100)?\s*\)\s*\|\s*Loser:\s*([\w.-]+)\s*\(\s*Score:\s*(\d{1,3})(?:\s*/\s*100)?\s*\)\s*$`,
)

// Verdict is the parser's view of a generated narrative.
type Verdict struct {
	Winner      string
	Loser       string
	WinnerScore int
	LoserScore  int
	Narrative   string
	// Matched is false when the text did not follow the result convention.
	Matched bool
}

// Unmatched is the soft-degraded verdict for text that could not be parsed:
// no winner, no loser, zero scores, the full raw text as narrative.
func Unmatched(raw string) Verdict {
	return Verdict{Narrative: raw}
}

// ParseHeader matches the first line of text against the result convention.
// On a match the first line is dropped from the narrative and the remainder
// trimmed; otherwise the result is Unmatched(text).
func ParseHeader(text string) Verdict {
	first, rest, _ := strings.Cut(text, "\n")
	m := resultLine.FindStringSubmatch(strings.TrimRight(first, "\r"))
	if m == nil {
		return Unmatched(text)
	}

	winnerScore, err := strconv.Atoi(m[2])
	if err != nil || winnerScore > maxScore {
		return Unmatched(text)
	}
	loserScore, err := strconv.Atoi(m[4])
	if err != nil || loserScore > maxScore {
		return Unmatched(text)
	}
	// The winner must outscore the loser; only an all-zero line may tie.
	if winnerScore < loserScore || (winnerScore == loserScore && winnerScore != 0) {
		return Unmatched(text)
	}

	return Verdict{
		Winner:      m[1],
		WinnerScore: winnerScore,
		Loser:       m[3],
		LoserScore:  loserScore,
		Narrative:   strings.TrimSpace(rest),
		Matched:     true,
	}
}

// Verbatim wraps text as a narrative without looking for a result line. NFT
// battles take their scores from the calculators, so the text is flavor only.
func Verbatim(text string) Verdict {
	return Verdict{Narrative: text}
}

// Bind checks a matched verdict against the two combatants. Names compare
// case-insensitively and are rewritten to the combatants' spelling. A verdict
// that names someone else, or the same combatant twice, is degraded to
// Unmatched(raw) so an outcome always names one of the two sides.
func (v Verdict) Bind(left, right, raw string) Verdict {
	if !v.Matched {
		return v
	}
	winner, okW := pick(v.Winner, left, right)
	loser, okL := pick(v.Loser, left, right)
	if !okW || !okL || winner == loser {
		return Unmatched(raw)
	}
	v.Winner, v.Loser = winner, loser
	return v
}

func pick(name, left, right string) (string, bool) {
	switch {
	case strings.EqualFold(name, left):
		return left, true
	case strings.EqualFold(name, right):
		return right, true
	default:
		return "", false
	}
}
