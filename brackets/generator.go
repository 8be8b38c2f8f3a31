package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/football-tournament/models"
)

var (
	ErrNotEnoughParticipants = fmt.Errorf("%w: at least 2 participants are required", models.ErrInvalidInput)
	ErrGroupConfigMissing    = fmt.Errorf("%w: numberOfGroups and teamsPerGroup must be set for group phases", models.ErrInvalidInput)
)

// Fixture описывает ещё не сохранённый матч. Сервис превращает его в models.Match.
type Fixture struct {
	HomeTeamID string
	AwayTeamID string
	Matchday   int
	Group      string
	Knockout   bool
	Leg        int
}

type GenerateParams struct {
	Participants []string
	Config       models.PhaseConfig
}

type FixtureGenerator interface {
	GenerateFixtures(ctx context.Context, params GenerateParams) ([]*Fixture, error)

	GetName() string
}

// ForFormat возвращает генератор для формата фазы.
func ForFormat(format models.PhaseFormat) (FixtureGenerator, error) {
	switch format {
	case models.FormatLeague:
		return NewRoundRobinGenerator(), nil
	case models.FormatGroups:
		return NewGroupsGenerator(), nil
	case models.FormatKnockout:
		return NewKnockoutGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidFormat, format)
	}
}
