package services

import (
	"errors"
	"sync"
	"time"

	"github.com/Dosada05/football-tournament/models"
	"github.com/Dosada05/football-tournament/repositories"
	"github.com/google/uuid"
)

// --- Общие хелперы ---

func newID() string {
	return uuid.NewString()
}

// Clock позволяет подменять текущее время в тестах.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTeamNotFound), errors.Is(err, repositories.ErrPlayerTeamInvalid):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPhaseNotFound), errors.Is(err, repositories.ErrMatchPhaseInvalid):
		return ErrPhaseNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrNationalIDConflict):
		return ErrNationalIDConflict
	case errors.Is(err, repositories.ErrShirtNumberConflict):
		return ErrShirtNumberConflict
	case errors.Is(err, repositories.ErrPhaseOrderConflict):
		return ErrPhaseOrderConflict
	case errors.Is(err, repositories.ErrMatchTeamInvalid):
		return ErrUnknownParticipant
	case errors.Is(err, repositories.ErrMatchTeamsMustDiffer):
		return models.ErrSameTeams
	}
	return err
}

// keyedLocker сериализует изменения одной сущности (матча, фазы, команды)
// и не мешает работе с другими.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*lockEntry)}
}

// Lock захватывает блокировку ключа и возвращает функцию освобождения.
func (k *keyedLocker) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// entityLocks общий для всех сервисов: команда меняется и из TeamService,
// и из PlayerService (заявка), поэтому ключи имеют префикс сущности.
var entityLocks = newKeyedLocker()

func teamLockKey(id string) string  { return "team:" + id }
func phaseLockKey(id string) string { return "phase:" + id }
func matchLockKey(id string) string { return "match:" + id }
