package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
)

type PhaseRepository struct {
	phases map[string]*models.Phase
	mu     sync.RWMutex
}

func NewPhaseRepository() *PhaseRepository {
	return &PhaseRepository{phases: make(map[string]*models.Phase)}
}

func (r *PhaseRepository) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.phases {
		if other.TournamentID == p.TournamentID && other.Order == p.Order {
			return repositories.ErrPhaseOrderConflict
		}
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.phases[p.ID] = clonePhase(p)
	return nil
}

func (r *PhaseRepository) GetByID(ctx context.Context, id string) (*models.Phase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.phases[id]
	if !ok {
		return nil, repositories.ErrPhaseNotFound
	}
	return clonePhase(p), nil
}

func (r *PhaseRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Phase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	phases := make([]*models.Phase, 0)
	for _, p := range r.phases {
		if p.TournamentID == tournamentID {
			phases = append(phases, clonePhase(p))
		}
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i].Order < phases[j].Order })
	return phases, nil
}

func (r *PhaseRepository) Update(ctx context.Context, exec repositories.SQLExecutor, p *models.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.phases[p.ID]; !ok {
		return repositories.ErrPhaseNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	r.phases[p.ID] = clonePhase(p)
	return nil
}
