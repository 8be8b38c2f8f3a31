package regulation

import "github.com/Dosada05/football-tournament/models"

// TeamStats сводит заявку команды для проверки квот.
type TeamStats struct {
	Total               int                           `json:"total"`
	Validated           int                           `json:"validated"`
	Pending             int                           `json:"pending"`
	Rejected            int                           `json:"rejected"`
	ValidatedByGroup    map[QuotaGroup]int            `json:"validated_by_group"`
	ValidatedByCategory map[models.PlayerCategory]int `json:"validated_by_category"`
}

func BuildTeamStats(players []*models.Player) TeamStats {
	stats := TeamStats{
		ValidatedByGroup:    make(map[QuotaGroup]int),
		ValidatedByCategory: make(map[models.PlayerCategory]int),
	}
	for _, p := range players {
		stats.Total++
		switch p.Status {
		case models.ValidationValidated:
			stats.Validated++
			stats.ValidatedByCategory[p.Category]++
			if profile, ok := ProfileOf(p.Category); ok {
				for _, group := range profile.Groups() {
					stats.ValidatedByGroup[group]++
				}
			}
		case models.ValidationRejected:
			stats.Rejected++
		default:
			stats.Pending++
		}
	}
	return stats
}
