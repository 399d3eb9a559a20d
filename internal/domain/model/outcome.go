package model

import "time"

// BattleOutcome is the structured result of one battle. It is returned to
// the caller and never stored.
type BattleOutcome struct {
	ID          string    `json:"id"`
	Mode        Mode      `json:"mode"`
	Winner      string    `json:"winner"`
	Loser       string    `json:"loser"`
	WinnerScore int       `json:"winnerScore"`
	LoserScore  int       `json:"loserScore"`
	Narrative   string    `json:"battleResult"`
	Degraded    bool      `json:"degraded"`
	CreatedAt   time.Time `json:"-"`
}

// Decided reports whether the outcome names a winner. A degraded GitHub
// battle (unparsable narrative) has none.
func (o BattleOutcome) Decided() bool {
	return o.Winner != ""
}

// Spread is WinnerScore - LoserScore, never negative for a decided outcome.
func (o BattleOutcome) Spread() int {
	if o.WinnerScore < o.LoserScore {
		return 0
	}
	return o.WinnerScore - o.LoserScore
}
