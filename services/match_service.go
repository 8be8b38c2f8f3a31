package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	defaultUpcomingLimit = 10
	dueMatchesBatch      = 100
)

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	UpdateMatch(ctx context.Context, id string, input UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id string) error

	StartMatch(ctx context.Context, id string) (*models.Match, error)
	RecordGoal(ctx context.Context, id string, input RecordGoalInput) (*models.Match, error)
	RecordCard(ctx context.Context, id string, input RecordCardInput) (*models.Match, error)
	FinishMatch(ctx context.Context, id string, input FinishMatchInput) (*models.Match, error)
	CancelMatch(ctx context.Context, id string, reason string) (*models.Match, error)
	SuspendMatch(ctx context.Context, id string, reason string) (*models.Match, error)

	ListMatchesByTeam(ctx context.Context, teamID string) ([]*models.Match, error)
	ListUpcomingMatches(ctx context.Context, limit int) ([]*models.Match, error)
	// StartDueMatches переводит в in_progress все матчи, время начала которых наступило.
	StartDueMatches(ctx context.Context, now time.Time) (int, error)
}

type CreateMatchInput struct {
	PhaseID     string     `json:"phase_id"`
	HomeTeamID  string     `json:"home_team_id"`
	AwayTeamID  string     `json:"away_team_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Venue       *string    `json:"venue"`
	Referee     *string    `json:"referee"`
	Matchday    int        `json:"matchday"`
	Group       string     `json:"group"`
	Knockout    bool       `json:"knockout"`
	Leg         int        `json:"leg"`
}

type UpdateMatchInput struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Venue       *string    `json:"venue"`
	Referee     *string    `json:"referee"`
	Notes       *string    `json:"notes"`
}

type RecordGoalInput struct {
	PlayerID string `json:"player_id"`
	Minute   int    `json:"minute"`
	OwnGoal  bool   `json:"own_goal"`
}

type RecordCardInput struct {
	PlayerID string           `json:"player_id"`
	Minute   int              `json:"minute"`
	Color    models.CardColor `json:"color"`
}

type FinishMatchInput struct {
	GoalsHome           int     `json:"goals_home"`
	GoalsAway           int     `json:"goals_away"`
	PenaltyWinnerTeamID *string `json:"penalty_winner_team_id"`
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	phaseRepo  repositories.PhaseRepository
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	transactor repositories.Transactor
	notifier   Notifier
	clock      Clock
	logger     *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	phaseRepo repositories.PhaseRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	transactor repositories.Transactor,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		phaseRepo:  phaseRepo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		transactor: transactor,
		notifier:   notifierOrNoop(notifier),
		clock:      systemClock,
		logger:     logger,
	}
}

// CreateMatch добавляет матч в фазу вручную. Идентификатор матча
// дописывается в фазу явно, в той же транзакции.
func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.Matchday < 0 || input.Leg < 0 {
		return nil, fmt.Errorf("%w: matchday and leg must not be negative", models.ErrInvalidInput)
	}

	unlock := entityLocks.Lock(phaseLockKey(input.PhaseID))
	defer unlock()

	phase, err := s.phaseRepo.GetByID(ctx, input.PhaseID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if phase.Status == models.PhaseStatusFinished {
		return nil, fmt.Errorf("%w: phase is finished", models.ErrStateConflict)
	}

	match, err := models.NewMatch(phase.ID, phase.TournamentID, input.HomeTeamID, input.AwayTeamID)
	if err != nil {
		return nil, err
	}
	if _, _, err = s.loadTeams(ctx, match); err != nil {
		return nil, err
	}

	match.ID = newID()
	match.ScheduledAt = input.ScheduledAt
	match.Venue = input.Venue
	match.Referee = input.Referee
	match.Matchday = input.Matchday
	match.Group = strings.TrimSpace(input.Group)
	match.Knockout = input.Knockout
	match.Leg = input.Leg
	phase.AppendMatch(match.ID)

	err = s.transactor.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.matchRepo.Create(ctx, exec, match); txErr != nil {
			return txErr
		}
		return s.phaseRepo.Update(ctx, exec, phase)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "match created",
		slog.String("match_id", match.ID),
		slog.String("phase_id", phase.ID),
	)
	s.notifier.Publish(match.PhaseID, EventMatchUpdated, match)
	return match, nil
}

// loadTeams параллельно загружает команды хозяев и гостей.
func (s *matchService) loadTeams(ctx context.Context, match *models.Match) (home, away *models.Team, err error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		home, loadErr = s.teamRepo.GetByID(gCtx, match.HomeTeamID)
		return handleRepositoryError(loadErr)
	})
	g.Go(func() error {
		var loadErr error
		away, loadErr = s.teamRepo.GetByID(gCtx, match.AwayTeamID)
		return handleRepositoryError(loadErr)
	})
	if err = g.Wait(); err != nil {
		return nil, nil, err
	}
	return home, away, nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return match, nil
}

// mutate выполняет изменение матча под блокировкой, сохраняет результат
// и оповещает комнату фазы. При ошибке fn матч не сохраняется.
func (s *matchService) mutate(ctx context.Context, id, action string, fn func(match *models.Match) error) (*models.Match, error) {
	unlock := entityLocks.Lock(matchLockKey(id))
	defer unlock()

	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err = fn(match); err != nil {
		return nil, err
	}
	if err = s.matchRepo.Update(ctx, nil, match); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "match "+action,
		slog.String("match_id", match.ID),
		slog.String("status", string(match.Status)),
	)
	s.notifier.Publish(match.PhaseID, EventMatchUpdated, match)
	return match, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id string, input UpdateMatchInput) (*models.Match, error) {
	return s.mutate(ctx, id, "updated", func(match *models.Match) error {
		if match.Status == models.MatchStatusFinished {
			return models.ErrMatchAlreadyFinished
		}
		if input.ScheduledAt != nil {
			match.ScheduledAt = input.ScheduledAt
		}
		if input.Venue != nil {
			match.Venue = input.Venue
		}
		if input.Referee != nil {
			match.Referee = input.Referee
		}
		if input.Notes != nil {
			match.Notes = input.Notes
		}
		return nil
	})
}

// DeleteMatch удаляет незавершённый матч и убирает его из фазы.
func (s *matchService) DeleteMatch(ctx context.Context, id string) error {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err)
	}

	unlockPhase := entityLocks.Lock(phaseLockKey(match.PhaseID))
	defer unlockPhase()
	unlockMatch := entityLocks.Lock(matchLockKey(id))
	defer unlockMatch()

	if match, err = s.matchRepo.GetByID(ctx, id); err != nil {
		return handleRepositoryError(err)
	}
	if match.Status == models.MatchStatusFinished {
		return models.ErrMatchAlreadyFinished
	}
	phase, err := s.phaseRepo.GetByID(ctx, match.PhaseID)
	if err != nil {
		return handleRepositoryError(err)
	}
	phase.RemoveMatch(match.ID)

	err = s.transactor.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.matchRepo.Delete(ctx, exec, match.ID); txErr != nil {
			return txErr
		}
		return s.phaseRepo.Update(ctx, exec, phase)
	})
	if err != nil {
		return handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "match deleted", slog.String("match_id", id), slog.String("phase_id", phase.ID))
	return nil
}

func (s *matchService) StartMatch(ctx context.Context, id string) (*models.Match, error) {
	return s.mutate(ctx, id, "started", func(match *models.Match) error {
		return match.Start(s.clock())
	})
}

// playerTeam определяет, за какую из команд матча заявлен игрок.
func (s *matchService) playerTeam(ctx context.Context, match *models.Match, playerID string) (string, error) {
	if strings.TrimSpace(playerID) == "" {
		return "", fmt.Errorf("%w: player_id is required", models.ErrInvalidInput)
	}

	var player *models.Player
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		player, err = s.playerRepo.GetByID(gCtx, playerID)
		return handleRepositoryError(err)
	})
	var home, away *models.Team
	g.Go(func() error {
		var err error
		home, away, err = s.loadTeams(gCtx, match)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	switch {
	case home.HasPlayer(player.ID):
		return home.ID, nil
	case away.HasPlayer(player.ID):
		return away.ID, nil
	}
	return "", ErrPlayerNotInMatch
}

func requireInProgress(match *models.Match) error {
	if match.Status != models.MatchStatusInProgress {
		return fmt.Errorf("%w (status %s)", models.ErrMatchNotInProgress, match.Status)
	}
	return nil
}

func (s *matchService) RecordGoal(ctx context.Context, id string, input RecordGoalInput) (*models.Match, error) {
	return s.mutate(ctx, id, "goal recorded", func(match *models.Match) error {
		if err := requireInProgress(match); err != nil {
			return err
		}
		teamID, err := s.playerTeam(ctx, match, input.PlayerID)
		if err != nil {
			return err
		}
		return match.RecordGoal(input.PlayerID, teamID, input.Minute, input.OwnGoal)
	})
}

func (s *matchService) RecordCard(ctx context.Context, id string, input RecordCardInput) (*models.Match, error) {
	return s.mutate(ctx, id, "card recorded", func(match *models.Match) error {
		if err := requireInProgress(match); err != nil {
			return err
		}
		teamID, err := s.playerTeam(ctx, match, input.PlayerID)
		if err != nil {
			return err
		}
		return match.RecordCard(input.PlayerID, teamID, input.Minute, input.Color)
	})
}

// FinishMatch фиксирует счёт. Ответный матч плей-офф с доигранным первым
// матчем проверяет право на серию пенальти по сумме двух встреч.
func (s *matchService) FinishMatch(ctx context.Context, id string, input FinishMatchInput) (*models.Match, error) {
	return s.mutate(ctx, id, "finished", func(match *models.Match) error {
		if match.Knockout && match.Leg == 2 {
			firstLeg, err := s.findFirstLeg(ctx, match)
			if err != nil {
				return err
			}
			if firstLeg != nil {
				return match.FinishReturnLeg(input.GoalsHome, input.GoalsAway, firstLeg, input.PenaltyWinnerTeamID, s.clock())
			}
		}
		return match.Finish(input.GoalsHome, input.GoalsAway, input.PenaltyWinnerTeamID, s.clock())
	})
}

// findFirstLeg ищет завершённый первый матч той же пары с обратными хозяевами.
func (s *matchService) findFirstLeg(ctx context.Context, match *models.Match) (*models.Match, error) {
	finished := models.MatchStatusFinished
	matches, err := s.matchRepo.ListByPhase(ctx, match.PhaseID, repositories.MatchFilter{Status: &finished})
	if err != nil {
		return nil, fmt.Errorf("failed to load first leg of match %s: %w", match.ID, err)
	}
	for _, m := range matches {
		if m.ID != match.ID && m.Knockout && m.Leg == 1 &&
			m.HomeTeamID == match.AwayTeamID && m.AwayTeamID == match.HomeTeamID {
			return m, nil
		}
	}
	return nil, nil
}

func (s *matchService) CancelMatch(ctx context.Context, id string, reason string) (*models.Match, error) {
	return s.mutate(ctx, id, "cancelled", func(match *models.Match) error {
		return match.Cancel(strings.TrimSpace(reason))
	})
}

func (s *matchService) SuspendMatch(ctx context.Context, id string, reason string) (*models.Match, error) {
	return s.mutate(ctx, id, "suspended", func(match *models.Match) error {
		return match.Suspend(strings.TrimSpace(reason))
	})
}

func (s *matchService) ListMatchesByTeam(ctx context.Context, teamID string) ([]*models.Match, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, handleRepositoryError(err)
	}
	matches, err := s.matchRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of team %s: %w", teamID, err)
	}
	return matches, nil
}

func (s *matchService) ListUpcomingMatches(ctx context.Context, limit int) ([]*models.Match, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	matches, err := s.matchRepo.ListUpcoming(ctx, s.clock(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming matches: %w", err)
	}
	return matches, nil
}

// StartDueMatches запускается планировщиком. Ошибка одного матча не
// останавливает остальные: матч могли уже начать или отменить вручную.
func (s *matchService) StartDueMatches(ctx context.Context, now time.Time) (int, error) {
	due, err := s.matchRepo.ListDue(ctx, now, dueMatchesBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list due matches: %w", err)
	}

	started := 0
	for _, match := range due {
		_, startErr := s.mutate(ctx, match.ID, "started", func(m *models.Match) error {
			return m.Start(now)
		})
		if startErr != nil {
			if !errors.Is(startErr, models.ErrStateConflict) {
				s.logger.WarnContext(ctx, "failed to auto-start match",
					slog.String("match_id", match.ID),
					slog.Any("error", startErr),
				)
			}
			continue
		}
		started++
	}
	return started, nil
}
