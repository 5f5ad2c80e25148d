// Package stats aggregates authoritative league records into per-team and
// per-player season figures. Everything here is a pure function of its
// inputs; callers supply the snapshot and persist the results themselves.
package stats

import (
	"math"
	"sort"
	"strconv"

	"github.com/albapepper/league-data/internal/league"
)

// Game results as recorded in a team's recent-results list.
const (
	ResultWin  = "W"
	ResultLoss = "L"
	ResultDraw = "D"
)

// lastN is the window used for the last-N record in standings.
const lastN = 10

// RecentResult is one completed game from a team's point of view.
type RecentResult struct {
	GameID        string `json:"gameId"`
	OpponentID    string `json:"opponentId"`
	Result        string `json:"result"`
	Score         int    `json:"score"`
	OpponentScore int    `json:"opponentScore"`
	Date          string `json:"date"`
}

// TeamStats is a team's derived season record.
type TeamStats struct {
	TeamID        string `json:"teamId"`
	Name          string `json:"name"`
	ShortName     string `json:"shortName"`
	Conference    string `json:"conference"`
	GamesPlayed   int    `json:"gamesPlayed"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"pointsFor"`
	PointsAgainst int    `json:"pointsAgainst"`
	HomeWins      int    `json:"homeWins"`
	HomeLosses    int    `json:"homeLosses"`
	RoadWins      int    `json:"roadWins"`
	RoadLosses    int    `json:"roadLosses"`

	// WinPercentage is wins / gamesPlayed, 0 when no games were played.
	WinPercentage float64 `json:"winPercentage"`

	// Totals are counting stats summed from box scores.
	Totals   league.StatLine `json:"totals"`
	Averages TeamAverages    `json:"averages"`

	// Recent is newest first.
	Recent []RecentResult `json:"recent"`
}

// Diff returns the point differential.
func (t TeamStats) Diff() int {
	return t.PointsFor - t.PointsAgainst
}

// Streak returns the current run of identical results, e.g. "W4", or "-"
// when the team has not played.
func (t TeamStats) Streak() string {
	if len(t.Recent) == 0 {
		return "-"
	}
	first := t.Recent[0].Result
	n := 0
	for _, r := range t.Recent {
		if r.Result != first {
			break
		}
		n++
	}
	return first + strconv.Itoa(n)
}

// LastTen returns the wins and losses among the ten most recent games.
func (t TeamStats) LastTen() (wins, losses int) {
	recent := t.Recent
	if len(recent) > lastN {
		recent = recent[:lastN]
	}
	for _, r := range recent {
		switch r.Result {
		case ResultWin:
			wins++
		case ResultLoss:
			losses++
		}
	}
	return wins, losses
}

// TeamAverages are per-game figures, rounded to one decimal.
type TeamAverages struct {
	PointsPerGame        float64 `json:"ppg"`
	PointsAllowedPerGame float64 `json:"papg"`
	ReboundsPerGame      float64 `json:"rpg"`
	AssistsPerGame       float64 `json:"apg"`
	StealsPerGame        float64 `json:"spg"`
	BlocksPerGame        float64 `json:"bpg"`
}

// PlayerAverages are per-game figures and shooting percentages, rounded to
// one decimal. Percentages are on a 0-100 scale.
type PlayerAverages struct {
	PointsPerGame        float64 `json:"ppg"`
	ReboundsPerGame      float64 `json:"rpg"`
	AssistsPerGame       float64 `json:"apg"`
	StealsPerGame        float64 `json:"spg"`
	BlocksPerGame        float64 `json:"bpg"`
	TurnoversPerGame     float64 `json:"topg"`
	FoulsPerGame         float64 `json:"fpg"`
	MinutesPerGame       float64 `json:"mpg"`
	ThreesPerGame        float64 `json:"3pmpg"`
	FreeThrowsPerGame    float64 `json:"ftmpg"`
	FieldGoalPercentage  float64 `json:"fgPct"`
	ThreePointPercentage float64 `json:"threePct"`
	FreeThrowPercentage  float64 `json:"ftPct"`
}

// PlayerStats is a player's derived season figures.
type PlayerStats struct {
	PlayerID    string          `json:"playerId"`
	Name        string          `json:"name"`
	TeamID      string          `json:"teamId"`
	Number      int             `json:"number"`
	GamesPlayed int             `json:"gamesPlayed"`
	Totals      league.StatLine `json:"totals"`
	Averages    PlayerAverages  `json:"averages"`

	// Eligible is false for players without a game; they are kept for
	// profile display but never appear on leader lists.
	Eligible bool `json:"eligible"`
}

// Result holds the aggregates for one season. Teams and Players preserve
// the order of the supplied records.
type Result struct {
	SeasonID string        `json:"seasonId"`
	Teams    []TeamStats   `json:"teams"`
	Players  []PlayerStats `json:"players"`
}

// Team returns the aggregate for a team ID.
func (r Result) Team(id string) (TeamStats, bool) {
	for _, t := range r.Teams {
		if t.TeamID == id {
			return t, true
		}
	}
	return TeamStats{}, false
}

// Player returns the aggregate for a player ID.
func (r Result) Player(id string) (PlayerStats, bool) {
	for _, p := range r.Players {
		if p.PlayerID == id {
			return p, true
		}
	}
	return PlayerStats{}, false
}

// Aggregate derives team and player figures for a season from its
// completed games. Games belonging to other seasons or not yet finished are
// ignored. Team records are rebuilt from game results; player totals come
// from box-score lines when the season has any for that player, otherwise
// from the player's stored totals. Stored totals only count when the
// player's team has completed games in this season. Box lines without a
// team ID are credited to the player's team.
func Aggregate(season league.Season, teams []league.Team, players []league.Player, games []league.Game) Result {
	teamIdx := make(map[string]int, len(teams))
	out := Result{
		SeasonID: season.ID,
		Teams:    make([]TeamStats, len(teams)),
		Players:  make([]PlayerStats, len(players)),
	}
	for i, t := range teams {
		teamIdx[t.ID] = i
		out.Teams[i] = TeamStats{
			TeamID:     t.ID,
			Name:       t.Name,
			ShortName:  t.ShortName,
			Conference: string(t.Conference),
			Recent:     []RecentResult{},
		}
	}

	type boxTotals struct {
		games int
		line  league.StatLine
	}
	playerBox := make(map[string]*boxTotals)
	teamHasBox := make(map[string]bool)
	playerTeam := make(map[string]string, len(players))
	for _, p := range players {
		playerTeam[p.ID] = p.TeamID
	}

	for _, g := range games {
		if g.SeasonID != season.ID || !g.Completed() {
			continue
		}
		hi, homeOK := teamIdx[g.HomeTeamID]
		ai, awayOK := teamIdx[g.AwayTeamID]
		if homeOK {
			applyResult(&out.Teams[hi], g, true)
		}
		if awayOK {
			applyResult(&out.Teams[ai], g, false)
		}

		seen := make(map[string]bool, len(g.BoxScore))
		for _, line := range g.BoxScore {
			if line.PlayerID == "" {
				continue
			}
			bt, ok := playerBox[line.PlayerID]
			if !ok {
				bt = &boxTotals{}
				playerBox[line.PlayerID] = bt
			}
			if !seen[line.PlayerID] {
				seen[line.PlayerID] = true
				bt.games++
			}
			bt.line.Add(line.StatLine)

			teamID := line.TeamID
			if teamID == "" {
				teamID = playerTeam[line.PlayerID]
			}
			if ti, ok := teamIdx[teamID]; ok {
				out.Teams[ti].Totals.Add(line.StatLine)
				teamHasBox[teamID] = true
			}
		}
	}

	for i, p := range players {
		ps := PlayerStats{
			PlayerID: p.ID,
			Name:     p.Name,
			TeamID:   p.TeamID,
			Number:   p.Number,
		}
		if bt, ok := playerBox[p.ID]; ok {
			ps.GamesPlayed = bt.games
			ps.Totals = bt.line
		} else if ti, ok := teamIdx[p.TeamID]; ok && out.Teams[ti].GamesPlayed > 0 {
			ps.GamesPlayed = p.Stats.GamesPlayed
			ps.Totals = p.Stats.StatLine
			// Teams without box scores fall back to their players' totals.
			if !teamHasBox[p.TeamID] {
				out.Teams[ti].Totals.Add(p.Stats.StatLine)
			}
		}
		ps.Averages = playerAverages(ps.GamesPlayed, ps.Totals)
		ps.Eligible = ps.GamesPlayed > 0
		out.Players[i] = ps
	}

	for i := range out.Teams {
		t := &out.Teams[i]
		t.WinPercentage = ratio(t.Wins, t.GamesPlayed)
		t.Averages = teamAverages(*t)
		sort.SliceStable(t.Recent, func(a, b int) bool {
			if t.Recent[a].Date != t.Recent[b].Date {
				return t.Recent[a].Date > t.Recent[b].Date
			}
			return t.Recent[a].GameID > t.Recent[b].GameID
		})
	}
	return out
}

func applyResult(t *TeamStats, g league.Game, home bool) {
	score, opp, oppID := g.HomeScore, g.AwayScore, g.AwayTeamID
	if !home {
		score, opp, oppID = g.AwayScore, g.HomeScore, g.HomeTeamID
	}
	t.GamesPlayed++
	t.PointsFor += score
	t.PointsAgainst += opp

	result := ResultDraw
	switch {
	case score > opp:
		result = ResultWin
		t.Wins++
		if home {
			t.HomeWins++
		} else {
			t.RoadWins++
		}
	case score < opp:
		result = ResultLoss
		t.Losses++
		if home {
			t.HomeLosses++
		} else {
			t.RoadLosses++
		}
	}
	t.Recent = append(t.Recent, RecentResult{
		GameID:        g.ID,
		OpponentID:    oppID,
		Result:        result,
		Score:         score,
		OpponentScore: opp,
		Date:          g.Date,
	})
}

func playerAverages(gp int, s league.StatLine) PlayerAverages {
	return PlayerAverages{
		PointsPerGame:        PerGame(s.Points, gp),
		ReboundsPerGame:      PerGame(s.Rebounds, gp),
		AssistsPerGame:       PerGame(s.Assists, gp),
		StealsPerGame:        PerGame(s.Steals, gp),
		BlocksPerGame:        PerGame(s.Blocks, gp),
		TurnoversPerGame:     PerGame(s.Turnovers, gp),
		FoulsPerGame:         PerGame(s.Fouls, gp),
		MinutesPerGame:       PerGame(s.Minutes, gp),
		ThreesPerGame:        PerGame(s.ThreesMade, gp),
		FreeThrowsPerGame:    PerGame(s.FreeThrowsMade, gp),
		FieldGoalPercentage:  Percentage(s.FieldGoalsMade, s.FieldGoalsAttempted),
		ThreePointPercentage: Percentage(s.ThreesMade, s.ThreesAttempted),
		FreeThrowPercentage:  Percentage(s.FreeThrowsMade, s.FreeThrowsAttempted),
	}
}

func teamAverages(t TeamStats) TeamAverages {
	gp := t.GamesPlayed
	return TeamAverages{
		PointsPerGame:        PerGame(t.PointsFor, gp),
		PointsAllowedPerGame: PerGame(t.PointsAgainst, gp),
		ReboundsPerGame:      PerGame(t.Totals.Rebounds, gp),
		AssistsPerGame:       PerGame(t.Totals.Assists, gp),
		StealsPerGame:        PerGame(t.Totals.Steals, gp),
		BlocksPerGame:        PerGame(t.Totals.Blocks, gp),
	}
}

// PerGame returns total/games rounded to one decimal, or 0 when games is 0.
func PerGame(total, games int) float64 {
	if games <= 0 {
		return 0
	}
	return Round(float64(total)/float64(games), 1)
}

// Percentage returns made/attempted on a 0-100 scale rounded to one
// decimal, or 0 when nothing was attempted.
func Percentage(made, attempted int) float64 {
	if attempted <= 0 {
		return 0
	}
	return Round(float64(made)/float64(attempted)*100, 1)
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d)
}
