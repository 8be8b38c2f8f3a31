package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/regulation"
	"github.com/Dosada05/football-tournament/repositories"
	"golang.org/x/sync/errgroup"
)

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	UpdateTeamStatus(ctx context.Context, id string, status models.TeamStatus) (*models.Team, error)
	CanAddPlayer(ctx context.Context, id string) (regulation.Decision, error)
	GetTeamStats(ctx context.Context, id string) (*regulation.TeamStats, error)
}

type CreateTeamInput struct {
	Name string `json:"name"`
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	rules      regulation.Rules
	logger     *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		rules:      regulation.Default,
		logger:     logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.ErrTeamNameRequired
	}

	team := &models.Team{
		ID:     newID(),
		Name:   name,
		Roster: []string{},
		Status: models.TeamStatusPending,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "team created", slog.String("team_id", team.ID), slog.String("name", team.Name))
	return team, nil
}

// GetTeamByID возвращает команду вместе с игроками заявки.
func (s *teamService) GetTeamByID(ctx context.Context, id string) (*models.Team, error) {
	var (
		team    *models.Team
		players []*models.Player
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		team, err = s.teamRepo.GetByID(gCtx, id)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.ListByTeam(gCtx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	team.Players = players
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) UpdateTeamStatus(ctx context.Context, id string, status models.TeamStatus) (*models.Team, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTeamStatus, status)
	}

	unlock := entityLocks.Lock(teamLockKey(id))
	defer unlock()

	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	team.Status = status
	if err = s.teamRepo.Update(ctx, nil, team); err != nil {
		return nil, handleRepositoryError(err)
	}
	return team, nil
}

// CanAddPlayer отвечает, есть ли в заявке место для ещё одного игрока.
func (s *teamService) CanAddPlayer(ctx context.Context, id string) (regulation.Decision, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return regulation.Decision{}, handleRepositoryError(err)
	}
	return s.rules.CanAddPlayer(team.RosterSize()), nil
}

func (s *teamService) GetTeamStats(ctx context.Context, id string) (*regulation.TeamStats, error) {
	if _, err := s.teamRepo.GetByID(ctx, id); err != nil {
		return nil, handleRepositoryError(err)
	}
	players, err := s.playerRepo.ListByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %s: %w", id, err)
	}
	stats := regulation.BuildTeamStats(players)
	return &stats, nil
}
