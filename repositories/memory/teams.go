// Package memory содержит потокобезопасные репозитории в памяти. Они
// используются в тестах и при запуске без DATABASE_URL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
)

type TeamRepository struct {
	teams map[string]*models.Team
	mu    sync.RWMutex
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[string]*models.Team)}
}

func (r *TeamRepository) nameTaken(name, exceptID string) bool {
	for id, t := range r.teams {
		if id != exceptID && t.Name == name {
			return true
		}
	}
	return false
}

func (r *TeamRepository) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(team.Name, team.ID) {
		return repositories.ErrTeamNameConflict
	}
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	r.teams[team.ID] = cloneTeam(team)
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := make([]*models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		teams = append(teams, cloneTeam(t))
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (r *TeamRepository) Update(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	if r.nameTaken(team.Name, team.ID) {
		return repositories.ErrTeamNameConflict
	}
	team.UpdatedAt = time.Now().UTC()
	r.teams[team.ID] = cloneTeam(team)
	return nil
}
