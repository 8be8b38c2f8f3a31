package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/football-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlayerAppendsToRoster(t *testing.T) {
	env := newTestEnv(t)
	team := env.createTeam(t, "Araguaney")

	player := env.createPlayer(t, team.ID, 10, models.CategoryResidentOwner, "1990-03-10")
	assert.Equal(t, models.ValidationPending, player.Status)
	assert.Equal(t, team.ID, player.TeamID)

	stored, err := env.teamRepo.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{player.ID}, stored.Roster)
}

func TestCreatePlayerChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "Apamate")
	existing := env.createPlayer(t, team.ID, 9, models.CategoryResidentOwner, "1990-03-10")

	t.Run("national id is checked before the team", func(t *testing.T) {
		input := playerInput(11, models.CategoryResidentOwner, "1990-03-10")
		input.NationalID = existing.NationalID
		_, err := env.players.CreatePlayer(ctx, "missing-team", input)
		assert.ErrorIs(t, err, ErrNationalIDConflict)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := env.players.CreatePlayer(ctx, "missing-team", playerInput(11, models.CategoryResidentOwner, "1990-03-10"))
		assert.ErrorIs(t, err, ErrTeamNotFound)
	})

	t.Run("shirt number taken", func(t *testing.T) {
		_, err := env.players.CreatePlayer(ctx, team.ID, playerInput(9, models.CategoryResidentOwner, "1990-03-10"))
		assert.ErrorIs(t, err, ErrShirtNumberConflict)
	})

	t.Run("shirt number out of range", func(t *testing.T) {
		_, err := env.players.CreatePlayer(ctx, team.ID, playerInput(21, models.CategoryResidentOwner, "1990-03-10"))
		assert.ErrorIs(t, err, models.ErrInvalidShirtNumber)
	})

	t.Run("bad birth date", func(t *testing.T) {
		_, err := env.players.CreatePlayer(ctx, team.ID, playerInput(12, models.CategoryResidentOwner, "10/03/1990"))
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		_, err = env.players.CreatePlayer(ctx, team.ID, playerInput(12, models.CategoryResidentOwner, "2030-01-01"))
		assert.ErrorIs(t, err, models.ErrBirthDateInTheFuture)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := env.players.CreatePlayer(ctx, team.ID, playerInput(12, "VISITOR", "1990-03-10"))
		assert.ErrorIs(t, err, models.ErrInvalidCategory)
	})

	stored, err := env.teamRepo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Roster, 1, "failed creations must not touch the roster")
}

func TestCreatePlayerRosterFull(t *testing.T) {
	env := newTestEnv(t)
	team := env.createTeam(t, "Jabillo")
	for shirt := 1; shirt <= 16; shirt++ {
		env.createPlayer(t, team.ID, shirt, models.CategoryResidentOwner, "1990-03-10")
	}

	_, err := env.players.CreatePlayer(context.Background(), team.ID, playerInput(17, models.CategoryResidentOwner, "1990-03-10"))
	assert.ErrorIs(t, err, ErrRosterFull)
	assert.ErrorIs(t, err, models.ErrStateConflict)
}

func TestSetValidationStatusValidated(t *testing.T) {
	env := newTestEnv(t)
	team := env.createTeam(t, "Caoba")
	player := env.createPlayer(t, team.ID, 4, models.CategoryResidentOwner, "1990-03-10")

	notes := "documents checked"
	validated, err := env.players.SetValidationStatus(context.Background(), player.ID, SetValidationInput{
		Status:      models.ValidationValidated,
		ValidatorID: "admin-1",
		Notes:       &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ValidationValidated, validated.Status)
	require.NotNil(t, validated.ValidatedBy)
	assert.Equal(t, "admin-1", *validated.ValidatedBy)
	require.NotNil(t, validated.ValidatedAt)
	assert.Equal(t, testNow, *validated.ValidatedAt)
	assert.Equal(t, &notes, validated.Notes)
}

func TestSetValidationStatusRegulationFailure(t *testing.T) {
	env := newTestEnv(t)
	team := env.createTeam(t, "Ceiba")
	// 24 года на testNow, иностранец
	player := env.createPlayer(t, team.ID, 5, models.CategoryPolice, "2001-01-01")

	_, err := env.players.SetValidationStatus(context.Background(), player.ID, SetValidationInput{
		Status:      models.ValidationValidated,
		ValidatorID: "admin-1",
	})
	var regErr *RegulationError
	require.True(t, errors.As(err, &regErr))
	require.Len(t, regErr.Violations, 1)
	assert.Contains(t, regErr.Violations[0], "minimum age of 26")
	assert.ErrorIs(t, err, models.ErrStateConflict)

	stored, getErr := env.playerRepo.GetByID(context.Background(), player.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.ValidationPending, stored.Status)

	// отклонение не проверяет регламент
	rejected, err := env.players.SetValidationStatus(context.Background(), player.ID, SetValidationInput{
		Status:      models.ValidationRejected,
		ValidatorID: "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ValidationRejected, rejected.Status)
}

func TestSetValidationStatusForeignQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "Guayacan")

	validate := func(id string) error {
		_, err := env.players.SetValidationStatus(ctx, id, SetValidationInput{
			Status:      models.ValidationValidated,
			ValidatorID: "admin-1",
		})
		return err
	}

	var first string
	for shirt := 1; shirt <= 3; shirt++ {
		p := env.createPlayer(t, team.ID, shirt, models.CategoryNonResidentOwner, "1980-05-05")
		require.NoError(t, validate(p.ID))
		if first == "" {
			first = p.ID
		}
	}

	fourth := env.createPlayer(t, team.ID, 4, models.CategoryNonResidentOwner, "1980-05-05")
	err := validate(fourth.ID)
	var regErr *RegulationError
	require.True(t, errors.As(err, &regErr))
	assert.Contains(t, regErr.Violations[0], "FOREIGN quota reached")

	// повторное одобрение уже одобренного игрока не упирается в собственную квоту
	assert.NoError(t, validate(first))

	result, err := env.players.CheckRegulation(ctx, fourth.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	stored, err := env.playerRepo.GetByID(ctx, fourth.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ValidationPending, stored.Status, "dry run must not change the player")
}

func TestSetValidationStatusInput(t *testing.T) {
	env := newTestEnv(t)
	team := env.createTeam(t, "Merecure")
	player := env.createPlayer(t, team.ID, 4, models.CategoryResidentOwner, "1990-03-10")

	_, err := env.players.SetValidationStatus(context.Background(), player.ID, SetValidationInput{
		Status:      models.ValidationPending,
		ValidatorID: "admin-1",
	})
	assert.ErrorIs(t, err, models.ErrInvalidValidation)

	_, err = env.players.SetValidationStatus(context.Background(), player.ID, SetValidationInput{
		Status: models.ValidationValidated,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.players.SetValidationStatus(context.Background(), "missing", SetValidationInput{
		Status:      models.ValidationValidated,
		ValidatorID: "admin-1",
	})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestValidatedPlayerIsLocked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "Chaguaramo")
	player := env.createPlayer(t, team.ID, 8, models.CategoryResidentOwner, "1990-03-10")

	newName := "Carlos"
	updated, err := env.players.UpdatePlayer(ctx, player.ID, UpdatePlayerInput{FirstName: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Carlos", updated.FirstName)

	_, err = env.players.SetValidationStatus(ctx, player.ID, SetValidationInput{
		Status:      models.ValidationValidated,
		ValidatorID: "admin-1",
	})
	require.NoError(t, err)

	_, err = env.players.UpdatePlayer(ctx, player.ID, UpdatePlayerInput{FirstName: &newName})
	assert.ErrorIs(t, err, models.ErrPlayerLocked)
	assert.ErrorIs(t, env.players.DeletePlayer(ctx, player.ID), models.ErrPlayerLocked)
}

func TestUpdatePlayerShirtNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "Bucare")
	env.createPlayer(t, team.ID, 2, models.CategoryResidentOwner, "1990-03-10")
	player := env.createPlayer(t, team.ID, 3, models.CategoryResidentOwner, "1990-03-10")

	taken := 2
	_, err := env.players.UpdatePlayer(ctx, player.ID, UpdatePlayerInput{ShirtNumber: &taken})
	assert.ErrorIs(t, err, ErrShirtNumberConflict)

	free := 14
	updated, err := env.players.UpdatePlayer(ctx, player.ID, UpdatePlayerInput{ShirtNumber: &free})
	require.NoError(t, err)
	assert.Equal(t, 14, updated.ShirtNumber)
}

func TestDeletePlayerRemovesFromRoster(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "Cují")
	keep := env.createPlayer(t, team.ID, 1, models.CategoryResidentOwner, "1990-03-10")
	drop := env.createPlayer(t, team.ID, 2, models.CategoryResidentOwner, "1990-03-10")

	require.NoError(t, env.players.DeletePlayer(ctx, drop.ID))

	stored, err := env.teamRepo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, stored.Roster)

	_, err = env.players.GetPlayerByID(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.ErrorIs(t, env.players.DeletePlayer(ctx, drop.ID), ErrPlayerNotFound)
}

func TestListPlayersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "Roble")
	a := env.createPlayer(t, team.ID, 1, models.CategoryResidentOwner, "1990-03-10")
	env.createPlayer(t, team.ID, 2, models.CategoryResidentOwner, "1990-03-10")

	_, err := env.players.SetValidationStatus(ctx, a.ID, SetValidationInput{
		Status:      models.ValidationValidated,
		ValidatorID: "admin-1",
	})
	require.NoError(t, err)

	pending, err := env.players.ListPlayersByStatus(ctx, models.ValidationPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = env.players.ListPlayersByStatus(ctx, "unknown")
	assert.ErrorIs(t, err, models.ErrInvalidValidation)
}
