package brackets

import (
	"context"
	"fmt"
)

type GroupsGenerator struct{}

func NewGroupsGenerator() FixtureGenerator {
	return &GroupsGenerator{}
}

func (g *GroupsGenerator) GetName() string {
	return "Groups"
}

// GroupLetter возвращает метку группы по её индексу: 0 -> "A", 1 -> "B" и т.д.
func GroupLetter(index int) string {
	return string(rune('A' + index))
}

// AssignGroups раскладывает участников по группам: команда с индексом i
// попадает в группу i % numberOfGroups. Порядок внутри группы сохраняется.
func AssignGroups(participants []string, numberOfGroups int) map[string][]string {
	groups := make(map[string][]string, numberOfGroups)
	for i, teamID := range participants {
		letter := GroupLetter(i % numberOfGroups)
		groups[letter] = append(groups[letter], teamID)
	}
	return groups
}

// GenerateFixtures строит круговой турнир внутри каждой группы. teamsPerGroup
// обязателен в конфигурации, но не ограничивает размер групп.
func (g *GroupsGenerator) GenerateFixtures(ctx context.Context, params GenerateParams) ([]*Fixture, error) {
	n := len(params.Participants)
	if n < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughParticipants, n)
	}

	cfg := params.Config
	if cfg.NumberOfGroups <= 0 || cfg.TeamsPerGroup <= 0 {
		return nil, ErrGroupConfigMissing
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	groups := AssignGroups(params.Participants, cfg.NumberOfGroups)

	fixtures := make([]*Fixture, 0)
	for idx := 0; idx < cfg.NumberOfGroups; idx++ {
		letter := GroupLetter(idx)
		// группа из одной команды матчей не получает
		if len(groups[letter]) < 2 {
			continue
		}
		fixtures = append(fixtures, roundRobinFixtures(groups[letter], cfg.DoubleRoundRobin, letter)...)
	}
	return fixtures, nil
}
