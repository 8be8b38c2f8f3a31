package models

// StandingRow вычисляется при каждом запросе и в базе не хранится.
type StandingRow struct {
	TeamID         string `json:"team_id"`
	Group          string `json:"group,omitempty"`
	Position       int    `json:"position"`
	Points         int    `json:"points"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`

	Team *Team `json:"team,omitempty"`
}

// GroupTable хранит таблицу одной группы в фазе формата GROUPS.
type GroupTable struct {
	Group string         `json:"group"`
	Rows  []*StandingRow `json:"rows"`
}
