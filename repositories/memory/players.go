package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
)

type PlayerRepository struct {
	players map[string]*models.Player
	mu      sync.RWMutex
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{players: make(map[string]*models.Player)}
}

// checkUnique повторяет уникальные ограничения таблицы players.
func (r *PlayerRepository) checkUnique(p *models.Player) error {
	for id, other := range r.players {
		if id == p.ID {
			continue
		}
		if other.NationalID == p.NationalID {
			return repositories.ErrNationalIDConflict
		}
		if other.TeamID == p.TeamID && other.ShirtNumber == p.ShirtNumber &&
			other.Status != models.ValidationRejected && p.Status != models.ValidationRejected {
			return repositories.ErrShirtNumberConflict
		}
	}
	return nil
}

func (r *PlayerRepository) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(p); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.players[p.ID] = clonePlayer(p)
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return clonePlayer(p), nil
}

func (r *PlayerRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.NationalID == nationalID {
			return clonePlayer(p), nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]*models.Player, 0)
	for _, p := range r.players {
		if p.TeamID == teamID {
			players = append(players, clonePlayer(p))
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].ShirtNumber != players[j].ShirtNumber {
			return players[i].ShirtNumber < players[j].ShirtNumber
		}
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

func (r *PlayerRepository) ListByStatus(ctx context.Context, status models.ValidationStatus) ([]*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]*models.Player, 0)
	for _, p := range r.players {
		if p.Status == status {
			players = append(players, clonePlayer(p))
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.Before(players[j].CreatedAt)
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

func (r *PlayerRepository) Update(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if err := r.checkUnique(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	r.players[p.ID] = clonePlayer(p)
	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}
