// Package ranking orders aggregated season figures into standings tables and
// top-5 leader lists. Every sort is stable: entries that compare equal keep
// the order they were supplied in, and ranks are positional (1..N, no ties).
package ranking

import (
	"fmt"
	"sort"

	"github.com/albapepper/league-data/internal/stats"
)

// StandingEntry is one row of the standings table.
type StandingEntry struct {
	Rank          int     `json:"rank"`
	TeamID        string  `json:"teamId"`
	TeamName      string  `json:"teamName"`
	ShortName     string  `json:"shortName"`
	Conference    string  `json:"conference"`
	GamesPlayed   int     `json:"gamesPlayed"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinPercentage float64 `json:"winPercentage"`
	GamesBehind   float64 `json:"gamesBehind"`
	PointsFor     int     `json:"pointsFor"`
	PointsAgainst int     `json:"pointsAgainst"`
	Diff          int     `json:"diff"`
	Home          string  `json:"home"`
	Road          string  `json:"road"`
	Streak        string  `json:"streak"`
	LastTen       string  `json:"lastTen"`
}

// LeaderEntry is one row of a leader list. PlayerID is empty on team lists.
type LeaderEntry struct {
	Rank        int     `json:"rank"`
	Category    string  `json:"category"`
	PlayerID    string  `json:"playerId,omitempty"`
	TeamID      string  `json:"teamId"`
	Name        string  `json:"name"`
	Number      int     `json:"number,omitempty"`
	GamesPlayed int     `json:"gamesPlayed"`
	Value       float64 `json:"value"`
}

// RankStandings orders teams by wins, then point differential, both
// descending. Teams equal on both keep their input order.
func RankStandings(teams []stats.TeamStats) []StandingEntry {
	sorted := make([]stats.TeamStats, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Wins != sorted[j].Wins {
			return sorted[i].Wins > sorted[j].Wins
		}
		return sorted[i].Diff() > sorted[j].Diff()
	})

	out := make([]StandingEntry, len(sorted))
	if len(sorted) == 0 {
		return out
	}
	leader := sorted[0]
	for i, t := range sorted {
		gb := float64((leader.Wins-t.Wins)+(t.Losses-leader.Losses)) / 2
		if gb < 0 || i == 0 {
			gb = 0
		}
		l10w, l10l := t.LastTen()
		out[i] = StandingEntry{
			Rank:          i + 1,
			TeamID:        t.TeamID,
			TeamName:      t.Name,
			ShortName:     t.ShortName,
			Conference:    t.Conference,
			GamesPlayed:   t.GamesPlayed,
			Wins:          t.Wins,
			Losses:        t.Losses,
			WinPercentage: stats.Round(t.WinPercentage, 3),
			GamesBehind:   gb,
			PointsFor:     t.PointsFor,
			PointsAgainst: t.PointsAgainst,
			Diff:          t.Diff(),
			Home:          record(t.HomeWins, t.HomeLosses),
			Road:          record(t.RoadWins, t.RoadLosses),
			Streak:        t.Streak(),
			LastTen:       record(l10w, l10l),
		}
	}
	return out
}

// RankLeaders returns up to TopN eligible players for a category, highest
// sort key first.
func RankLeaders(players []stats.PlayerStats, category string) ([]LeaderEntry, error) {
	cat, err := LookupPlayerCategory(category)
	if err != nil {
		return nil, err
	}

	eligible := make([]stats.PlayerStats, 0, len(players))
	for _, p := range players {
		if !p.Eligible {
			continue
		}
		if cat.Qualifies != nil && !cat.Qualifies(p) {
			continue
		}
		eligible = append(eligible, p)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return cat.sortKey(eligible[i]) > cat.sortKey(eligible[j])
	})
	if len(eligible) > TopN {
		eligible = eligible[:TopN]
	}

	out := make([]LeaderEntry, len(eligible))
	for i, p := range eligible {
		out[i] = LeaderEntry{
			Rank:        i + 1,
			Category:    cat.Key,
			PlayerID:    p.PlayerID,
			TeamID:      p.TeamID,
			Name:        p.Name,
			Number:      p.Number,
			GamesPlayed: p.GamesPlayed,
			Value:       cat.Value(p),
		}
	}
	return out, nil
}

// RankTeamLeaders returns up to TopN teams for a category, highest value
// first.
func RankTeamLeaders(teams []stats.TeamStats, category string) ([]LeaderEntry, error) {
	cat, err := LookupTeamCategory(category)
	if err != nil {
		return nil, err
	}

	sorted := make([]stats.TeamStats, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		return cat.Value(sorted[i]) > cat.Value(sorted[j])
	})
	if len(sorted) > TopN {
		sorted = sorted[:TopN]
	}

	out := make([]LeaderEntry, len(sorted))
	for i, t := range sorted {
		out[i] = LeaderEntry{
			Rank:        i + 1,
			Category:    cat.Key,
			TeamID:      t.TeamID,
			Name:        t.Name,
			GamesPlayed: t.GamesPlayed,
			Value:       cat.Value(t),
		}
	}
	return out, nil
}

// AllPlayerLeaders ranks every player category. The map is keyed by
// category key.
func AllPlayerLeaders(players []stats.PlayerStats) map[string][]LeaderEntry {
	out := make(map[string][]LeaderEntry, len(PlayerCategories))
	for _, c := range PlayerCategories {
		// Keys come from PlayerCategories, so lookup cannot fail.
		out[c.Key], _ = RankLeaders(players, c.Key)
	}
	return out
}

// AllTeamLeaders ranks every team category.
func AllTeamLeaders(teams []stats.TeamStats) map[string][]LeaderEntry {
	out := make(map[string][]LeaderEntry, len(TeamCategories))
	for _, c := range TeamCategories {
		out[c.Key], _ = RankTeamLeaders(teams, c.Key)
	}
	return out
}

func record(w, l int) string {
	return fmt.Sprintf("%d-%d", w, l)
}
