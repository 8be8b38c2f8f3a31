package brackets

import (
	"context"
	"fmt"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "League"
}

// GenerateFixtures creates a round robin where each participant meets every other
// participant once, or twice with home and away swapped when doubleRoundRobin is set.
func (g *RoundRobinGenerator) GenerateFixtures(ctx context.Context, params GenerateParams) ([]*Fixture, error) {
	if len(params.Participants) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughParticipants, len(params.Participants))
	}
	return roundRobinFixtures(params.Participants, params.Config.DoubleRoundRobin, ""), nil
}

// roundRobinFixtures pairs teams with the circle method so nobody plays twice on
// the same matchday. The team listed earlier in the input is always home in the
// first leg. Second legs reuse the round order, offset by the number of rounds.
func roundRobinFixtures(teams []string, double bool, group string) []*Fixture {
	slots := make([]int, len(teams))
	for i := range slots {
		slots[i] = i
	}
	// Odd number of teams: index -1 is a bye
	if len(slots)%2 != 0 {
		slots = append(slots, -1)
	}

	n := len(slots)
	numRounds := n - 1
	half := n / 2

	firstLeg := make([]*Fixture, 0, len(teams)*(len(teams)-1)/2)
	for round := 1; round <= numRounds; round++ {
		for i := 0; i < half; i++ {
			a, b := slots[i], slots[n-1-i]
			if a < 0 || b < 0 {
				continue
			}
			if a > b {
				a, b = b, a
			}
			firstLeg = append(firstLeg, &Fixture{
				HomeTeamID: teams[a],
				AwayTeamID: teams[b],
				Matchday:   round,
				Group:      group,
			})
		}
		// Rotate everything except the first slot
		rotated := make([]int, 0, n)
		rotated = append(rotated, slots[0], slots[n-1])
		rotated = append(rotated, slots[1:n-1]...)
		slots = rotated
	}

	if !double {
		return firstLeg
	}

	fixtures := make([]*Fixture, 0, 2*len(firstLeg))
	fixtures = append(fixtures, firstLeg...)
	for _, f := range firstLeg {
		fixtures = append(fixtures, &Fixture{
			HomeTeamID: f.AwayTeamID,
			AwayTeamID: f.HomeTeamID,
			Matchday:   f.Matchday + numRounds,
			Group:      group,
		})
	}
	return fixtures
}
