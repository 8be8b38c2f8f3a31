package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournament/brackets"
	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
	"github.com/Dosada05/football-tournament/standings"
	"golang.org/x/sync/errgroup"
)

const defaultDaysBetweenMatchdays = 7

type PhaseService interface {
	CreatePhase(ctx context.Context, input CreatePhaseInput) (*models.Phase, error)
	GetPhase(ctx context.Context, id string) (*models.Phase, error)
	ListPhases(ctx context.Context, tournamentID string) ([]*models.Phase, error)
	SetParticipants(ctx context.Context, id string, teamIDs []string) (*models.Phase, error)
	GenerateSchedule(ctx context.Context, id string, input GenerateScheduleInput) ([]*models.Match, error)
	GetStandings(ctx context.Context, id string) (*PhaseStandings, error)
	GetQualifiers(ctx context.Context, id string, count int) ([]string, error)
	GetGroupQualifiers(ctx context.Context, id string, perGroup int) ([]string, error)
	GetKnockoutWinners(ctx context.Context, id string) ([]string, error)
	FinishPhase(ctx context.Context, id string, input FinishPhaseInput) (*models.Phase, error)
	ListPhaseMatches(ctx context.Context, id string, filter repositories.MatchFilter) ([]*models.Match, error)
}

type CreatePhaseInput struct {
	TournamentID  string             `json:"tournament_id"`
	Name          string             `json:"name"`
	Format        models.PhaseFormat `json:"format"`
	Order         int                `json:"order"`
	Participants  []string           `json:"participants"`
	Configuration models.PhaseConfig `json:"configuration"`
}

// GenerateScheduleInput задаёт необязательные даты: тур k начинается
// через (k-1)*DaysBetweenMatchdays дней после StartDate.
type GenerateScheduleInput struct {
	StartDate            *time.Time `json:"start_date"`
	DaysBetweenMatchdays int        `json:"days_between_matchdays"`
	Venue                *string    `json:"venue"`
}

type FinishPhaseInput struct {
	QualifierCount *int `json:"qualifier_count"`
}

// PhaseStandings содержит общую таблицу фазы и, для формата GROUPS, таблицы групп.
type PhaseStandings struct {
	PhaseID string                `json:"phase_id"`
	Format  models.PhaseFormat    `json:"format"`
	Rows    []*models.StandingRow `json:"standings"`
	Groups  []models.GroupTable   `json:"groups,omitempty"`
}

type phaseService struct {
	phaseRepo  repositories.PhaseRepository
	matchRepo  repositories.MatchRepository
	teamRepo   repositories.TeamRepository
	transactor repositories.Transactor
	notifier   Notifier
	archiver   StandingsArchiver
	clock      Clock
	logger     *slog.Logger
}

// NewPhaseService собирает сервис фаз. notifier и archiver могут быть nil.
func NewPhaseService(
	phaseRepo repositories.PhaseRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	transactor repositories.Transactor,
	notifier Notifier,
	archiver StandingsArchiver,
	logger *slog.Logger,
) PhaseService {
	return &phaseService{
		phaseRepo:  phaseRepo,
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		transactor: transactor,
		notifier:   notifierOrNoop(notifier),
		archiver:   archiver,
		clock:      systemClock,
		logger:     logger,
	}
}

func (s *phaseService) CreatePhase(ctx context.Context, input CreatePhaseInput) (*models.Phase, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: phase name is required", models.ErrInvalidInput)
	}
	tournamentID := strings.TrimSpace(input.TournamentID)
	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament_id is required", models.ErrInvalidInput)
	}
	if !input.Format.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidFormat, input.Format)
	}
	if input.Order < 1 {
		return nil, models.ErrInvalidOrder
	}
	if err := input.Configuration.Validate(); err != nil {
		return nil, err
	}

	phase := &models.Phase{
		ID:             newID(),
		TournamentID:   tournamentID,
		Name:           name,
		Format:         input.Format,
		Order:          input.Order,
		Participants:   []string{},
		Config:         input.Configuration,
		Status:         models.PhaseStatusConfiguring,
		MatchIDs:       []string{},
		QualifiedTeams: []string{},
	}
	if len(input.Participants) > 0 {
		if err := phase.SetParticipants(input.Participants); err != nil {
			return nil, err
		}
		if err := s.ensureTeamsExist(ctx, phase.Participants); err != nil {
			return nil, err
		}
	}

	if err := s.phaseRepo.Create(ctx, nil, phase); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "phase created",
		slog.String("phase_id", phase.ID),
		slog.String("format", string(phase.Format)),
		slog.Int("participants", len(phase.Participants)),
	)
	return phase, nil
}

// ensureTeamsExist проверяет команды параллельно, как в загрузке составов матча.
func (s *phaseService) ensureTeamsExist(ctx context.Context, teamIDs []string) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, teamID := range teamIDs {
		g.Go(func() error {
			if _, err := s.teamRepo.GetByID(gCtx, teamID); err != nil {
				if errors.Is(err, repositories.ErrTeamNotFound) {
					return fmt.Errorf("%w: %s", ErrUnknownParticipant, teamID)
				}
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *phaseService) GetPhase(ctx context.Context, id string) (*models.Phase, error) {
	phase, err := s.phaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return phase, nil
}

func (s *phaseService) ListPhases(ctx context.Context, tournamentID string) ([]*models.Phase, error) {
	phases, err := s.phaseRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phases of tournament %s: %w", tournamentID, err)
	}
	return phases, nil
}

func (s *phaseService) SetParticipants(ctx context.Context, id string, teamIDs []string) (*models.Phase, error) {
	unlock := entityLocks.Lock(phaseLockKey(id))
	defer unlock()

	phase, err := s.phaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err = phase.SetParticipants(teamIDs); err != nil {
		return nil, err
	}
	if err = s.ensureTeamsExist(ctx, phase.Participants); err != nil {
		return nil, err
	}
	if err = s.phaseRepo.Update(ctx, nil, phase); err != nil {
		return nil, handleRepositoryError(err)
	}
	return phase, nil
}

// GenerateSchedule строит расписание фазы и сохраняет матчи вместе с фазой
// в одной транзакции. Повторная генерация запрещена.
func (s *phaseService) GenerateSchedule(ctx context.Context, id string, input GenerateScheduleInput) ([]*models.Match, error) {
	if input.DaysBetweenMatchdays < 0 {
		return nil, fmt.Errorf("%w: days_between_matchdays must not be negative", models.ErrInvalidInput)
	}

	unlock := entityLocks.Lock(phaseLockKey(id))
	defer unlock()

	phase, err := s.phaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if phase.Status != models.PhaseStatusConfiguring {
		return nil, models.ErrPhaseAlreadyScheduled
	}

	generator, err := brackets.ForFormat(phase.Format)
	if err != nil {
		return nil, err
	}
	fixtures, err := generator.GenerateFixtures(ctx, brackets.GenerateParams{
		Participants: phase.Participants,
		Config:       phase.Config,
	})
	if err != nil {
		return nil, err
	}

	days := input.DaysBetweenMatchdays
	if days == 0 {
		days = defaultDaysBetweenMatchdays
	}

	matches := make([]*models.Match, 0, len(fixtures))
	matchIDs := make([]string, 0, len(fixtures))
	for _, fx := range fixtures {
		match, newErr := models.NewMatch(phase.ID, phase.TournamentID, fx.HomeTeamID, fx.AwayTeamID)
		if newErr != nil {
			return nil, newErr
		}
		match.ID = newID()
		match.Matchday = fx.Matchday
		match.Group = fx.Group
		match.Knockout = fx.Knockout
		match.Leg = fx.Leg
		match.Venue = input.Venue
		if input.StartDate != nil {
			kickoff := input.StartDate.UTC().AddDate(0, 0, (fx.Matchday-1)*days)
			match.ScheduledAt = &kickoff
		}
		matches = append(matches, match)
		matchIDs = append(matchIDs, match.ID)
	}

	if err = phase.MarkScheduled(matchIDs, s.clock()); err != nil {
		return nil, err
	}

	err = s.transactor.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		for _, match := range matches {
			if txErr := s.matchRepo.Create(ctx, exec, match); txErr != nil {
				return fmt.Errorf("failed to create match %s vs %s: %w", match.HomeTeamID, match.AwayTeamID, txErr)
			}
		}
		return s.phaseRepo.Update(ctx, exec, phase)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "phase schedule generated",
		slog.String("phase_id", phase.ID),
		slog.String("generator", generator.GetName()),
		slog.Int("matches", len(matches)),
	)
	s.notifier.Publish(phase.ID, EventPhaseScheduled, matches)
	return matches, nil
}

// loadPhaseWithMatches параллельно читает фазу и все её матчи.
func (s *phaseService) loadPhaseWithMatches(ctx context.Context, id string) (*models.Phase, []*models.Match, error) {
	var (
		phase   *models.Phase
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		phase, err = s.phaseRepo.GetByID(gCtx, id)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByPhase(gCtx, id, repositories.MatchFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return phase, matches, nil
}

func buildStandings(phase *models.Phase, matches []*models.Match) *PhaseStandings {
	result := &PhaseStandings{
		PhaseID: phase.ID,
		Format:  phase.Format,
		Rows:    standings.Compute(phase.Participants, matches, phase.Config),
	}
	if phase.Format == models.FormatGroups {
		result.Groups = standings.ComputeGroups(phase.Participants, matches, phase.Config)
	}
	return result
}

func (s *phaseService) GetStandings(ctx context.Context, id string) (*PhaseStandings, error) {
	phase, matches, err := s.loadPhaseWithMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildStandings(phase, matches), nil
}

func checkQualifierCount(count int) error {
	if count <= 0 {
		return ErrInvalidQualifierQty
	}
	return nil
}

// GetQualifiers берёт первые count команд общей таблицы фазы независимо от
// формата и сохраняет их в фазе.
func (s *phaseService) GetQualifiers(ctx context.Context, id string, count int) ([]string, error) {
	if err := checkQualifierCount(count); err != nil {
		return nil, err
	}

	unlock := entityLocks.Lock(phaseLockKey(id))
	defer unlock()

	phase, matches, err := s.loadPhaseWithMatches(ctx, id)
	if err != nil {
		return nil, err
	}

	qualified := standings.Qualifiers(buildStandings(phase, matches).Rows, count)
	phase.QualifiedTeams = qualified
	if err = s.phaseRepo.Update(ctx, nil, phase); err != nil {
		return nil, handleRepositoryError(err)
	}
	return qualified, nil
}

// GetGroupQualifiers берёт по perGroup лучших команд каждой группы: сначала
// победители групп, затем вторые места. perGroup <= 0 означает значение
// qualifiersPerGroup из конфигурации. Фаза не изменяется.
func (s *phaseService) GetGroupQualifiers(ctx context.Context, id string, perGroup int) ([]string, error) {
	phase, matches, err := s.loadPhaseWithMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	if phase.Format != models.FormatGroups {
		return nil, fmt.Errorf("%w: %s", ErrWrongPhaseFormat, phase.Format)
	}
	if perGroup <= 0 {
		perGroup = phase.Config.QualifiersPerGroup
	}
	if err = checkQualifierCount(perGroup); err != nil {
		return nil, err
	}

	groups := standings.ComputeGroups(phase.Participants, matches, phase.Config)
	return standings.GroupQualifiers(groups, perGroup), nil
}

// GetKnockoutWinners возвращает победителей решённых пар плей-офф.
// Фаза не изменяется.
func (s *phaseService) GetKnockoutWinners(ctx context.Context, id string) ([]string, error) {
	phase, matches, err := s.loadPhaseWithMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	if phase.Format != models.FormatKnockout {
		return nil, fmt.Errorf("%w: %s", ErrWrongPhaseFormat, phase.Format)
	}
	return standings.KnockoutWinners(matches), nil
}

// FinishPhase закрывает фазу, при необходимости фиксирует прошедшие команды
// и отправляет итоговую таблицу в архив. Ошибка архива не отменяет завершение.
func (s *phaseService) FinishPhase(ctx context.Context, id string, input FinishPhaseInput) (*models.Phase, error) {
	unlock := entityLocks.Lock(phaseLockKey(id))
	defer unlock()

	phase, matches, err := s.loadPhaseWithMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.QualifierCount != nil {
		if err = checkQualifierCount(*input.QualifierCount); err != nil {
			return nil, err
		}
	}
	if err = phase.Finish(s.clock()); err != nil {
		return nil, err
	}

	table := buildStandings(phase, matches)
	if input.QualifierCount != nil {
		phase.QualifiedTeams = standings.Qualifiers(table.Rows, *input.QualifierCount)
	}
	if err = s.phaseRepo.Update(ctx, nil, phase); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "phase finished",
		slog.String("phase_id", phase.ID),
		slog.Int("qualified", len(phase.QualifiedTeams)),
	)

	if s.archiver != nil {
		location, archiveErr := s.archiver.ArchiveStandings(ctx, &StandingsSnapshot{
			Phase:     phase,
			Rows:      table.Rows,
			Groups:    table.Groups,
			Qualified: phase.QualifiedTeams,
		})
		if archiveErr != nil {
			s.logger.WarnContext(ctx, "failed to archive phase standings",
				slog.String("phase_id", phase.ID),
				slog.Any("error", archiveErr),
			)
		} else {
			s.logger.InfoContext(ctx, "phase standings archived",
				slog.String("phase_id", phase.ID),
				slog.String("location", location),
			)
		}
	}

	s.notifier.Publish(phase.ID, EventPhaseFinished, table)
	return phase, nil
}

func (s *phaseService) ListPhaseMatches(ctx context.Context, id string, filter repositories.MatchFilter) ([]*models.Match, error) {
	if _, err := s.phaseRepo.GetByID(ctx, id); err != nil {
		return nil, handleRepositoryError(err)
	}
	matches, err := s.matchRepo.ListByPhase(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of phase %s: %w", id, err)
	}
	return matches, nil
}
