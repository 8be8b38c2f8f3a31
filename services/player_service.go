package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/regulation"
	"github.com/Dosada05/football-tournament/repositories"
)

const birthDateLayout = "2006-01-02"

type PlayerService interface {
	CreatePlayer(ctx context.Context, teamID string, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*models.Player, error)
	ListPlayersByTeam(ctx context.Context, teamID string) ([]*models.Player, error)
	ListPlayersByStatus(ctx context.Context, status models.ValidationStatus) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	SetValidationStatus(ctx context.Context, id string, input SetValidationInput) (*models.Player, error)
	CheckRegulation(ctx context.Context, id string) (*regulation.Result, error)
}

type CreatePlayerInput struct {
	FirstName   string                `json:"first_name"`
	LastName    string                `json:"last_name"`
	NationalID  string                `json:"national_id"`
	BirthDate   string                `json:"birth_date"`
	ShirtNumber int                   `json:"shirt_number"`
	Category    models.PlayerCategory `json:"category"`
	Notes       *string               `json:"notes"`
}

// UpdatePlayerInput описывает частичное обновление: nil означает "не менять".
type UpdatePlayerInput struct {
	FirstName   *string                `json:"first_name"`
	LastName    *string                `json:"last_name"`
	BirthDate   *string                `json:"birth_date"`
	ShirtNumber *int                   `json:"shirt_number"`
	Category    *models.PlayerCategory `json:"category"`
	Notes       *string                `json:"notes"`
}

type SetValidationInput struct {
	Status      models.ValidationStatus `json:"status"`
	ValidatorID string                  `json:"validator_id"`
	Notes       *string                 `json:"notes"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	transactor repositories.Transactor
	rules      regulation.Rules
	clock      Clock
	logger     *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	transactor repositories.Transactor,
	logger *slog.Logger,
) PlayerService {
	return newPlayerService(playerRepo, teamRepo, transactor, systemClock, logger)
}

func newPlayerService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	transactor repositories.Transactor,
	clock Clock,
	logger *slog.Logger,
) *playerService {
	return &playerService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		transactor: transactor,
		rules:      regulation.Default,
		clock:      clock,
		logger:     logger,
	}
}

func parseBirthDate(value string, now time.Time) (time.Time, error) {
	birthDate, err := time.Parse(birthDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birth_date must have format YYYY-MM-DD", models.ErrInvalidInput)
	}
	if birthDate.After(now) {
		return time.Time{}, models.ErrBirthDateInTheFuture
	}
	return birthDate, nil
}

func (s *playerService) checkShirtNumber(number int) error {
	if !s.rules.ShirtNumberInRange(number) {
		return fmt.Errorf("%w: %d is not between %d and %d",
			models.ErrInvalidShirtNumber, number, s.rules.MinShirtNumber, s.rules.MaxShirtNumber)
	}
	return nil
}

// shirtTaken ищет в команде другого неотклонённого игрока с тем же номером.
func shirtTaken(players []*models.Player, number int, exceptID string) bool {
	for _, p := range players {
		if p.ID != exceptID && p.ShirtNumber == number && p.Status != models.ValidationRejected {
			return true
		}
	}
	return false
}

func (s *playerService) validateCreateInput(input CreatePlayerInput) (*models.Player, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, models.ErrPlayerNameRequired
	}
	nationalID := strings.TrimSpace(input.NationalID)
	if nationalID == "" {
		return nil, models.ErrNationalIDRequired
	}
	if !input.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, input.Category)
	}
	if err := s.checkShirtNumber(input.ShirtNumber); err != nil {
		return nil, err
	}
	birthDate, err := parseBirthDate(input.BirthDate, s.clock())
	if err != nil {
		return nil, err
	}

	return &models.Player{
		ID:          newID(),
		FirstName:   firstName,
		LastName:    lastName,
		NationalID:  nationalID,
		BirthDate:   birthDate,
		ShirtNumber: input.ShirtNumber,
		Category:    input.Category,
		Status:      models.ValidationPending,
		Notes:       input.Notes,
	}, nil
}

// CreatePlayer регистрирует игрока и добавляет его в заявку команды.
// Порядок проверок: формат данных, уникальность документа, существование
// команды, место в заявке, свободный игровой номер.
func (s *playerService) CreatePlayer(ctx context.Context, teamID string, input CreatePlayerInput) (*models.Player, error) {
	player, err := s.validateCreateInput(input)
	if err != nil {
		return nil, err
	}
	player.TeamID = teamID

	unlock := entityLocks.Lock(teamLockKey(teamID))
	defer unlock()

	if _, err = s.playerRepo.GetByNationalID(ctx, player.NationalID); err == nil {
		return nil, ErrNationalIDConflict
	} else if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to check national id: %w", err)
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	if decision := s.rules.CanAddPlayer(team.RosterSize()); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrRosterFull, decision.Reason)
	}

	teammates, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %s: %w", teamID, err)
	}
	if shirtTaken(teammates, player.ShirtNumber, "") {
		return nil, ErrShirtNumberConflict
	}
	if err = team.AddToRoster(player.ID); err != nil {
		return nil, err
	}

	err = s.transactor.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.playerRepo.Create(ctx, exec, player); txErr != nil {
			return txErr
		}
		return s.teamRepo.Update(ctx, exec, team)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player registered",
		slog.String("player_id", player.ID),
		slog.String("team_id", teamID),
		slog.Int("roster_size", team.RosterSize()),
	)
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return player, nil
}

func (s *playerService) ListPlayersByTeam(ctx context.Context, teamID string) ([]*models.Player, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, handleRepositoryError(err)
	}
	players, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %s: %w", teamID, err)
	}
	return players, nil
}

func (s *playerService) ListPlayersByStatus(ctx context.Context, status models.ValidationStatus) ([]*models.Player, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidValidation, status)
	}
	players, err := s.playerRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s players: %w", status, err)
	}
	return players, nil
}

// UpdatePlayer меняет данные игрока. Одобренного игрока менять нельзя.
func (s *playerService) UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	unlock := entityLocks.Lock(teamLockKey(player.TeamID))
	defer unlock()

	// перечитываем под блокировкой команды
	if player, err = s.playerRepo.GetByID(ctx, id); err != nil {
		return nil, handleRepositoryError(err)
	}
	if player.Locked() {
		return nil, models.ErrPlayerLocked
	}

	if input.FirstName != nil {
		if player.FirstName = strings.TrimSpace(*input.FirstName); player.FirstName == "" {
			return nil, models.ErrPlayerNameRequired
		}
	}
	if input.LastName != nil {
		if player.LastName = strings.TrimSpace(*input.LastName); player.LastName == "" {
			return nil, models.ErrPlayerNameRequired
		}
	}
	if input.BirthDate != nil {
		if player.BirthDate, err = parseBirthDate(*input.BirthDate, s.clock()); err != nil {
			return nil, err
		}
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, *input.Category)
		}
		player.Category = *input.Category
	}
	if input.Notes != nil {
		player.Notes = input.Notes
	}
	if input.ShirtNumber != nil && *input.ShirtNumber != player.ShirtNumber {
		if err = s.checkShirtNumber(*input.ShirtNumber); err != nil {
			return nil, err
		}
		teammates, listErr := s.playerRepo.ListByTeam(ctx, player.TeamID)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list players of team %s: %w", player.TeamID, listErr)
		}
		if shirtTaken(teammates, *input.ShirtNumber, player.ID) {
			return nil, ErrShirtNumberConflict
		}
		player.ShirtNumber = *input.ShirtNumber
	}

	if err = s.playerRepo.Update(ctx, nil, player); err != nil {
		return nil, handleRepositoryError(err)
	}
	return player, nil
}

// DeletePlayer удаляет неодобренного игрока и убирает его из заявки команды.
func (s *playerService) DeletePlayer(ctx context.Context, id string) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err)
	}

	unlock := entityLocks.Lock(teamLockKey(player.TeamID))
	defer unlock()

	if player, err = s.playerRepo.GetByID(ctx, id); err != nil {
		return handleRepositoryError(err)
	}
	if player.Locked() {
		return models.ErrPlayerLocked
	}

	team, err := s.teamRepo.GetByID(ctx, player.TeamID)
	if err != nil {
		return handleRepositoryError(err)
	}
	inRoster := team.RemoveFromRoster(player.ID) == nil

	err = s.transactor.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.playerRepo.Delete(ctx, exec, player.ID); txErr != nil {
			return txErr
		}
		if !inRoster {
			return nil
		}
		return s.teamRepo.Update(ctx, exec, team)
	})
	if err != nil {
		return handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player deleted", slog.String("player_id", id), slog.String("team_id", team.ID))
	return nil
}

// SetValidationStatus одобряет или отклоняет игрока. Перед одобрением
// проверяется регламент; при нарушениях возвращается *RegulationError
// со всеми нарушениями сразу.
func (s *playerService) SetValidationStatus(ctx context.Context, id string, input SetValidationInput) (*models.Player, error) {
	if input.Status != models.ValidationValidated && input.Status != models.ValidationRejected {
		return nil, fmt.Errorf("%w: target status must be validated or rejected, got %q",
			models.ErrInvalidValidation, input.Status)
	}
	validatorID := strings.TrimSpace(input.ValidatorID)
	if validatorID == "" {
		return nil, fmt.Errorf("%w: validator_id is required", models.ErrInvalidInput)
	}

	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	// блокировка команды: квоты считаются по всей заявке
	unlock := entityLocks.Lock(teamLockKey(player.TeamID))
	defer unlock()

	if player, err = s.playerRepo.GetByID(ctx, id); err != nil {
		return nil, handleRepositoryError(err)
	}

	now := s.clock()
	if input.Status == models.ValidationValidated {
		result, checkErr := s.evaluate(ctx, player, input.Status, now)
		if checkErr != nil {
			return nil, checkErr
		}
		if !result.Valid {
			return nil, &RegulationError{Violations: result.Errors}
		}
	}

	player.Status = input.Status
	player.ValidatedBy = &validatorID
	player.ValidatedAt = &now
	if input.Notes != nil {
		player.Notes = input.Notes
	}
	if err = s.playerRepo.Update(ctx, nil, player); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "player validation status changed",
		slog.String("player_id", player.ID),
		slog.String("status", string(player.Status)),
		slog.String("validator_id", validatorID),
	)
	return player, nil
}

// CheckRegulation выполняет проверку одобрения без изменения игрока.
func (s *playerService) CheckRegulation(ctx context.Context, id string) (*regulation.Result, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	result, err := s.evaluate(ctx, player, models.ValidationValidated, s.clock())
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *playerService) evaluate(ctx context.Context, player *models.Player, target models.ValidationStatus, now time.Time) (regulation.Result, error) {
	teammates, err := s.playerRepo.ListByTeam(ctx, player.TeamID)
	if err != nil {
		return regulation.Result{}, fmt.Errorf("failed to list players of team %s: %w", player.TeamID, err)
	}
	stats := regulation.BuildTeamStats(teammates)
	return s.rules.ValidatePlayer(player, stats, target, now), nil
}
