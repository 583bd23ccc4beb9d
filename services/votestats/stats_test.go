package votestats

import (
	"testing"

	"epvotes-backend/internal/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	testCases := []struct {
		name      string
		positions []db.Position
		active    int64
		expected  Stats
	}{
		{
			name:      "empty vote",
			positions: nil,
			active:    0,
			expected: Stats{
				Voted: 0,
				ByPosition: map[db.Position]int64{
					db.POSITION_FOR:        0,
					db.POSITION_AGAINST:    0,
					db.POSITION_ABSTENTION: 0,
					db.POSITION_NOVOTE:     0,
				},
			},
		},
		{
			name: "tallies and remainder",
			positions: []db.Position{
				db.POSITION_FOR, db.POSITION_FOR, db.POSITION_AGAINST,
				db.POSITION_ABSTENTION,
			},
			active: 6,
			expected: Stats{
				Voted: 4,
				ByPosition: map[db.Position]int64{
					db.POSITION_FOR:        2,
					db.POSITION_AGAINST:    1,
					db.POSITION_ABSTENTION: 1,
					db.POSITION_NOVOTE:     2,
				},
			},
		},
		{
			name:      "novote clamped at zero",
			positions: []db.Position{db.POSITION_FOR, db.POSITION_AGAINST},
			active:    1,
			expected: Stats{
				Voted: 2,
				ByPosition: map[db.Position]int64{
					db.POSITION_FOR:        1,
					db.POSITION_AGAINST:    1,
					db.POSITION_ABSTENTION: 0,
					db.POSITION_NOVOTE:     0,
				},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expected, Compute(test.positions, test.active))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestVotedPlusNovoteCoversRoster(t *testing.T) {
	positions := []db.Position{
		db.POSITION_FOR, db.POSITION_AGAINST, db.POSITION_ABSTENTION,
	}
	stats := Compute(positions, 5)
	require.EqualValues(t, 5, stats.Voted+stats.ByPosition[db.POSITION_NOVOTE])
}

func TestEncodeRoundTrip(t *testing.T) {
	stats := Compute([]db.Position{db.POSITION_FOR}, 3)

	raw, err := stats.Encode()
	require.NoError(t, err)
	require.Contains(t, raw, `"voted":1`)

	parsed, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, stats, parsed)
}
