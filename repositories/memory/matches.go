package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
)

type MatchRepository struct {
	matches map[string]*models.Match
	ids     []string // порядок вставки
	mu      sync.RWMutex
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{matches: make(map[string]*models.Match)}
}

func (r *MatchRepository) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.HomeTeamID == m.AwayTeamID {
		return repositories.ErrMatchTeamsMustDiffer
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, exists := r.matches[m.ID]; !exists {
		r.ids = append(r.ids, m.ID)
	}
	r.matches[m.ID] = cloneMatch(m)
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r *MatchRepository) collect(keep func(*models.Match) bool) []*models.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*models.Match, 0)
	for _, id := range r.ids {
		if m := r.matches[id]; keep(m) {
			matches = append(matches, cloneMatch(m))
		}
	}
	return matches
}

func (r *MatchRepository) ListByPhase(ctx context.Context, phaseID string, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches := r.collect(func(m *models.Match) bool {
		if m.PhaseID != phaseID {
			return false
		}
		if filter.Matchday != nil && m.Matchday != *filter.Matchday {
			return false
		}
		if filter.Group != nil && m.Group != *filter.Group {
			return false
		}
		if filter.Status != nil && m.Status != *filter.Status {
			return false
		}
		return true
	})
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Matchday != b.Matchday {
			return a.Matchday < b.Matchday
		}
		return a.Group < b.Group
	})
	return matches, nil
}

func (r *MatchRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Match, error) {
	matches := r.collect(func(m *models.Match) bool {
		return m.Involves(teamID)
	})
	sortBySchedule(matches)
	return matches, nil
}

func (r *MatchRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*models.Match, error) {
	matches := r.collect(func(m *models.Match) bool {
		return m.Status == models.MatchStatusScheduled && m.ScheduledAt != nil && !m.ScheduledAt.After(before)
	})
	sortBySchedule(matches)
	return truncate(matches, limit), nil
}

func (r *MatchRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*models.Match, error) {
	matches := r.collect(func(m *models.Match) bool {
		return m.Status == models.MatchStatusScheduled && m.ScheduledAt != nil && !m.ScheduledAt.Before(after)
	})
	sortBySchedule(matches)
	return truncate(matches, limit), nil
}

func (r *MatchRepository) Update(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	m.UpdatedAt = time.Now().UTC()
	r.matches[m.ID] = cloneMatch(m)
	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	return nil
}

// sortBySchedule ставит матчи без даты в конец.
func sortBySchedule(matches []*models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].ScheduledAt, matches[j].ScheduledAt
		switch {
		case a == nil && b == nil:
			return matches[i].Matchday < matches[j].Matchday
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
}

func truncate(matches []*models.Match, limit int) []*models.Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
