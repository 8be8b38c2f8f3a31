package brackets

import (
	"context"
	"fmt"
	"log/slog"
)

type KnockoutGenerator struct{}

func NewKnockoutGenerator() FixtureGenerator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) GetName() string {
	return "Knockout"
}

// GenerateFixtures pairs participants in input order: (0,1), (2,3) and so on.
// With doubleRoundRobin set every tie gets a return leg on matchday 2.
func (g *KnockoutGenerator) GenerateFixtures(ctx context.Context, params GenerateParams) ([]*Fixture, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughParticipants, n)
	}
	if n%2 != 0 {
		slog.Warn("knockout phase has an odd number of participants, last team left unpaired",
			slog.String("team_id", participants[n-1]),
			slog.Int("participants", n))
	}

	pairs := n / 2
	fixtures := make([]*Fixture, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		fixtures = append(fixtures, &Fixture{
			HomeTeamID: participants[2*i],
			AwayTeamID: participants[2*i+1],
			Matchday:   1,
			Knockout:   true,
			Leg:        1,
		})
	}

	if params.Config.DoubleRoundRobin {
		for i := 0; i < pairs; i++ {
			fixtures = append(fixtures, &Fixture{
				HomeTeamID: participants[2*i+1],
				AwayTeamID: participants[2*i],
				Matchday:   2,
				Knockout:   true,
				Leg:        2,
			})
		}
	}
	return fixtures, nil
}
