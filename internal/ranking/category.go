package ranking

import (
	"errors"
	"fmt"

	"github.com/albapepper/league-data/internal/stats"
)

// ErrUnknownCategory is returned for a category key outside the player or
// team category lists.
var ErrUnknownCategory = errors.New("unknown leader category")

// TopN is the length of every leader list.
const TopN = 5

// PlayerCategory describes one player leader board.
type PlayerCategory struct {
	Key   string
	Label string

	// Value is the figure shown on the board.
	Value func(stats.PlayerStats) float64

	// LowerIsBetter negates Value to form the sort key, so the ranking
	// itself always sorts descending.
	LowerIsBetter bool

	// Qualifies filters players below a minimum sample, e.g. attempts for
	// shooting percentages. Nil means every eligible player qualifies.
	Qualifies func(stats.PlayerStats) bool
}

// sortKey returns the descending sort key for a player.
func (c PlayerCategory) sortKey(p stats.PlayerStats) float64 {
	v := c.Value(p)
	if c.LowerIsBetter {
		return -v
	}
	return v
}

// TeamCategory describes one team leader board.
type TeamCategory struct {
	Key   string
	Label string
	Value func(stats.TeamStats) float64
}

func minAttempts(n int, attempted func(stats.PlayerStats) int) func(stats.PlayerStats) bool {
	return func(p stats.PlayerStats) bool { return attempted(p) >= n }
}

// PlayerCategories is the ordered list of player leader boards.
var PlayerCategories = []PlayerCategory{
	{Key: "ppg", Label: "Points per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.PointsPerGame }},
	{Key: "rpg", Label: "Rebounds per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.ReboundsPerGame }},
	{Key: "apg", Label: "Assists per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.AssistsPerGame }},
	{Key: "3pm", Label: "3-pointers made per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.ThreesPerGame }},
	{Key: "ftm", Label: "Free throws made per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.FreeThrowsPerGame }},
	{Key: "spg", Label: "Steals per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.StealsPerGame }},
	{Key: "bpg", Label: "Blocks per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.BlocksPerGame }},
	{Key: "tov", Label: "Turnovers per game", Value: func(p stats.PlayerStats) float64 { return p.Averages.TurnoversPerGame }, LowerIsBetter: true},
	{
		Key: "fg_pct", Label: "Field goal %",
		Value:     func(p stats.PlayerStats) float64 { return p.Averages.FieldGoalPercentage },
		Qualifies: minAttempts(10, func(p stats.PlayerStats) int { return p.Totals.FieldGoalsAttempted }),
	},
	{
		Key: "3p_pct", Label: "3-point %",
		Value:     func(p stats.PlayerStats) float64 { return p.Averages.ThreePointPercentage },
		Qualifies: minAttempts(5, func(p stats.PlayerStats) int { return p.Totals.ThreesAttempted }),
	},
	{
		Key: "ft_pct", Label: "Free throw %",
		Value:     func(p stats.PlayerStats) float64 { return p.Averages.FreeThrowPercentage },
		Qualifies: minAttempts(5, func(p stats.PlayerStats) int { return p.Totals.FreeThrowsAttempted }),
	},
}

// TeamCategories is the ordered list of team leader boards.
var TeamCategories = []TeamCategory{
	{Key: "ppg", Label: "Points per game", Value: func(t stats.TeamStats) float64 { return t.Averages.PointsPerGame }},
	{Key: "rpg", Label: "Rebounds per game", Value: func(t stats.TeamStats) float64 { return t.Averages.ReboundsPerGame }},
	{Key: "apg", Label: "Assists per game", Value: func(t stats.TeamStats) float64 { return t.Averages.AssistsPerGame }},
	{Key: "spg", Label: "Steals per game", Value: func(t stats.TeamStats) float64 { return t.Averages.StealsPerGame }},
	{Key: "bpg", Label: "Blocks per game", Value: func(t stats.TeamStats) float64 { return t.Averages.BlocksPerGame }},
}

// LookupPlayerCategory finds a player category by key.
func LookupPlayerCategory(key string) (PlayerCategory, error) {
	for _, c := range PlayerCategories {
		if c.Key == key {
			return c, nil
		}
	}
	return PlayerCategory{}, fmt.Errorf("player category %q: %w", key, ErrUnknownCategory)
}

// LookupTeamCategory finds a team category by key.
func LookupTeamCategory(key string) (TeamCategory, error) {
	for _, c := range TeamCategories {
		if c.Key == key {
			return c, nil
		}
	}
	return TeamCategory{}, fmt.Errorf("team category %q: %w", key, ErrUnknownCategory)
}
