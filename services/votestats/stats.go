package votestats

import (
	"encoding/json"

	"epvotes-backend/internal/db"
)

// Stats is the aggregate result of a vote, cached on the vote row as a
// JSON blob.
type Stats struct {
	Voted      int64                 `json:"voted"`
	ByPosition map[db.Position]int64 `json:"by_position"`
}

// Compute tallies the recorded positions of a vote. Voted counts members
// with an explicit FOR, AGAINST or ABSTENTION; NOVOTE is the number of
// members active on the vote date with no voted position, clamped at
// zero in case the association set and the roster disagree.
func Compute(positions []db.Position, activeMemberCount int64) Stats {
	stats := Stats{
		ByPosition: map[db.Position]int64{
			db.POSITION_FOR:        0,
			db.POSITION_AGAINST:    0,
			db.POSITION_ABSTENTION: 0,
			db.POSITION_NOVOTE:     0,
		},
	}

	for _, position := range positions {
		switch position {
		case db.POSITION_FOR, db.POSITION_AGAINST, db.POSITION_ABSTENTION:
			stats.ByPosition[position]++
			stats.Voted++
		case db.POSITION_NOVOTE:
			// explicit no-votes are folded into the roster remainder below
		}
	}

	novote := activeMemberCount - stats.Voted
	if novote < 0 {
		novote = 0
	}
	stats.ByPosition[db.POSITION_NOVOTE] = novote

	return stats
}

func (s Stats) Encode() (string, error) {
	raw, err := json.Marshal(s)
	return string(raw), err
}

func Parse(raw string) (Stats, error) {
	var stats Stats
	err := json.Unmarshal([]byte(raw), &stats)
	return stats, err
}
