package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/football-tournament/services"
)

const jsonContentType = "application/json"

// StandingsArchiver выгружает итоговую таблицу завершённой фазы в бакет
// отдельным JSON-файлом.
type StandingsArchiver struct {
	uploader FileUploader
	prefix   string
	now      func() time.Time
}

func NewStandingsArchiver(uploader FileUploader, prefix string) *StandingsArchiver {
	return &StandingsArchiver{
		uploader: uploader,
		prefix:   prefix,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ObjectKey строит ключ вида <prefix>/<tournament>/<phase>/standings-<unix>.json.
func (a *StandingsArchiver) ObjectKey(tournamentID, phaseID string) string {
	key := fmt.Sprintf("%s/%s/standings-%d.json", tournamentID, phaseID, a.now().Unix())
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}

func (a *StandingsArchiver) ArchiveStandings(ctx context.Context, snapshot *services.StandingsSnapshot) (string, error) {
	if snapshot == nil || snapshot.Phase == nil {
		return "", fmt.Errorf("standings snapshot without phase")
	}
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode standings of phase %s: %w", snapshot.Phase.ID, err)
	}

	key := a.ObjectKey(snapshot.Phase.TournamentID, snapshot.Phase.ID)
	result, err := a.uploader.Upload(ctx, key, jsonContentType, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
