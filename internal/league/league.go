// Package league defines the authoritative league records: seasons, teams,
// players and games with their box scores. Derived documents (standings,
// leader lists) live in the ranking package.
package league

// Conference is the half of the league a team plays in.
type Conference string

const (
	ConferenceWest Conference = "west"
	ConferenceEast Conference = "east"
)

// GameStatus is the lifecycle state of a game. Only finished games count
// toward aggregates.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinished  GameStatus = "finished"
)

// Season is a bounded period during which games are tracked. Exactly one
// season is active at a time.
type Season struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	Year      int    `json:"year" firestore:"year"`
	StartDate string `json:"startDate" firestore:"startDate"`
	EndDate   string `json:"endDate" firestore:"endDate"`
	Active    bool   `json:"isActive" firestore:"isActive"`
}

type TeamColors struct {
	Primary   string `json:"primary" firestore:"primary"`
	Secondary string `json:"secondary" firestore:"secondary"`
}

// TeamStats is the cumulative record stored on a team by result ingestion.
type TeamStats struct {
	GamesPlayed   int `json:"gamesPlayed" firestore:"gamesPlayed"`
	Wins          int `json:"wins" firestore:"wins"`
	Losses        int `json:"losses" firestore:"losses"`
	PointsFor     int `json:"pointsFor" firestore:"pointsFor"`
	PointsAgainst int `json:"pointsAgainst" firestore:"pointsAgainst"`
}

type Team struct {
	ID         string     `json:"id" firestore:"id"`
	Name       string     `json:"name" firestore:"name"`
	ShortName  string     `json:"shortName" firestore:"shortName"`
	City       string     `json:"city" firestore:"city"`
	Conference Conference `json:"conference" firestore:"conference"`
	Colors     TeamColors `json:"colors" firestore:"colors"`
	Logo       string     `json:"logo" firestore:"logo"`
	Stats      TeamStats  `json:"stats" firestore:"stats"`
}

// StatLine holds raw counting stats. It is used both for a player's season
// totals and for a single box-score line.
type StatLine struct {
	Minutes             int `json:"minutes" firestore:"minutes"`
	Points              int `json:"points" firestore:"points"`
	Rebounds            int `json:"rebounds" firestore:"rebounds"`
	Assists             int `json:"assists" firestore:"assists"`
	Steals              int `json:"steals" firestore:"steals"`
	Blocks              int `json:"blocks" firestore:"blocks"`
	Turnovers           int `json:"turnovers" firestore:"turnovers"`
	Fouls               int `json:"fouls" firestore:"fouls"`
	FieldGoalsMade      int `json:"fgMade" firestore:"fgMade"`
	FieldGoalsAttempted int `json:"fgAttempted" firestore:"fgAttempted"`
	ThreesMade          int `json:"threeMade" firestore:"threeMade"`
	ThreesAttempted     int `json:"threeAttempted" firestore:"threeAttempted"`
	FreeThrowsMade      int `json:"ftMade" firestore:"ftMade"`
	FreeThrowsAttempted int `json:"ftAttempted" firestore:"ftAttempted"`
}

// Add accumulates o into s.
func (s *StatLine) Add(o StatLine) {
	s.Minutes += o.Minutes
	s.Points += o.Points
	s.Rebounds += o.Rebounds
	s.Assists += o.Assists
	s.Steals += o.Steals
	s.Blocks += o.Blocks
	s.Turnovers += o.Turnovers
	s.Fouls += o.Fouls
	s.FieldGoalsMade += o.FieldGoalsMade
	s.FieldGoalsAttempted += o.FieldGoalsAttempted
	s.ThreesMade += o.ThreesMade
	s.ThreesAttempted += o.ThreesAttempted
	s.FreeThrowsMade += o.FreeThrowsMade
	s.FreeThrowsAttempted += o.FreeThrowsAttempted
}

// PlayerStats is a player's stored season totals.
type PlayerStats struct {
	GamesPlayed int `json:"gamesPlayed" firestore:"gamesPlayed"`
	StatLine
}

type Player struct {
	ID       string      `json:"id" firestore:"id"`
	Name     string      `json:"name" firestore:"name"`
	TeamID   string      `json:"teamId" firestore:"teamId"`
	Number   int         `json:"number" firestore:"number"`
	Position string      `json:"position" firestore:"position"`
	Stats    PlayerStats `json:"stats" firestore:"stats"`
}

// BoxLine is one player's line in a finalized game.
type BoxLine struct {
	PlayerID string `json:"playerId" firestore:"playerId"`
	TeamID   string `json:"teamId" firestore:"teamId"`
	StatLine
}

type Game struct {
	ID         string     `json:"id" firestore:"id"`
	SeasonID   string     `json:"seasonId" firestore:"seasonId"`
	HomeTeamID string     `json:"homeTeamId" firestore:"homeTeamId"`
	AwayTeamID string     `json:"awayTeamId" firestore:"awayTeamId"`
	Date       string     `json:"date" firestore:"date"` // ISO-8601, sorts lexically
	HomeScore  int        `json:"homeScore" firestore:"homeScore"`
	AwayScore  int        `json:"awayScore" firestore:"awayScore"`
	Status     GameStatus `json:"status" firestore:"status"`
	BoxScore   []BoxLine  `json:"playerStats,omitempty" firestore:"playerStats"`
}

// Completed reports whether the game counts toward aggregates.
func (g Game) Completed() bool {
	return g.Status == StatusFinished
}

// Snapshot is every authoritative record for one season, as read from a
// store at a single point in time.
type Snapshot struct {
	Season  Season
	Teams   []Team
	Players []Player
	Games   []Game
}
