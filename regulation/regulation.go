// Package regulation проверяет заявки команд на соответствие регламенту турнира:
// размер состава, возрастные ограничения, игровые номера и квоты по категориям.
// Все функции чистые и не обращаются к хранилищу.
package regulation

import (
	"fmt"
	"time"

	"github.com/Dosada05/football-tournament/models"
)

type QuotaGroup string

const (
	QuotaForeign    QuotaGroup = "FOREIGN"
	QuotaElDorado   QuotaGroup = "EL_DORADO"
	QuotaFoundation QuotaGroup = "FOUNDATION"
)

// Profile описывает, в какие квоты попадает категория игрока.
type Profile struct {
	Foreign     bool
	Institution QuotaGroup
}

// Groups возвращает все квоты категории: сначала иностранцы, затем учреждение.
func (p Profile) Groups() []QuotaGroup {
	groups := make([]QuotaGroup, 0, 2)
	if p.Foreign {
		groups = append(groups, QuotaForeign)
	}
	if p.Institution != "" {
		groups = append(groups, p.Institution)
	}
	return groups
}

var categoryProfiles = map[models.PlayerCategory]Profile{
	models.CategoryResidentOwner:     {},
	models.CategoryResidentTenant:    {},
	models.CategoryResidentSpouse:    {},
	models.CategoryResidentChild:     {},
	models.CategoryResidentInLaw:     {},
	models.CategoryNonResidentOwner:  {Foreign: true},
	models.CategoryPolice:            {Foreign: true},
	models.CategoryElDoradoTeacher:   {Foreign: true, Institution: QuotaElDorado},
	models.CategoryElDoradoWorker:    {Foreign: true, Institution: QuotaElDorado},
	models.CategoryFoundationTeacher: {Foreign: true, Institution: QuotaFoundation},
	models.CategoryFoundationWorker:  {Foreign: true, Institution: QuotaFoundation},
	models.CategoryFoundationParent:  {Foreign: true, Institution: QuotaFoundation},
}

func ProfileOf(category models.PlayerCategory) (Profile, bool) {
	p, ok := categoryProfiles[category]
	return p, ok
}

func IsForeign(category models.PlayerCategory) bool {
	return categoryProfiles[category].Foreign
}

type Rules struct {
	MaxRosterSize        int
	MinRosterSize        int
	MaxForeignPlayers    int
	MaxElDoradoPlayers   int
	MaxFoundationPlayers int
	MinAge               int
	MinForeignAge        int
	MaxAge               int
	MinShirtNumber       int
	MaxShirtNumber       int
}

// Default задаёт действующий регламент турнира.
var Default = Rules{
	MaxRosterSize:        16,
	MinRosterSize:        11,
	MaxForeignPlayers:    3,
	MaxElDoradoPlayers:   2,
	MaxFoundationPlayers: 2,
	MinAge:               16,
	MinForeignAge:        26,
	MaxAge:               60,
	MinShirtNumber:       1,
	MaxShirtNumber:       20,
}

func (r Rules) QuotaLimit(group QuotaGroup) int {
	switch group {
	case QuotaForeign:
		return r.MaxForeignPlayers
	case QuotaElDorado:
		return r.MaxElDoradoPlayers
	case QuotaFoundation:
		return r.MaxFoundationPlayers
	}
	return 0
}

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanAddPlayer разрешает добавление, пока в заявке меньше MaxRosterSize игроков.
func (r Rules) CanAddPlayer(rosterSize int) Decision {
	if rosterSize >= r.MaxRosterSize {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("roster is full: %d of %d players", rosterSize, r.MaxRosterSize),
		}
	}
	return Decision{Allowed: true}
}

func (r Rules) ShirtNumberInRange(number int) bool {
	return number >= r.MinShirtNumber && number <= r.MaxShirtNumber
}

type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidatePlayer проверяет игрока перед переводом в статус target и возвращает
// все нарушения сразу. Квоты проверяются только для target = validated.
// Если игрок уже одобрен, его собственный вклад в квоты не учитывается.
func (r Rules) ValidatePlayer(player *models.Player, stats TeamStats, target models.ValidationStatus, now time.Time) Result {
	violations := make([]string, 0)

	profile, known := ProfileOf(player.Category)
	if !known {
		violations = append(violations, fmt.Sprintf("unknown player category %q", player.Category))
	}

	age := player.AgeAt(now)
	if age < r.MinAge {
		violations = append(violations, fmt.Sprintf("player age %d is below the minimum age of %d", age, r.MinAge))
	}
	if age > r.MaxAge {
		violations = append(violations, fmt.Sprintf("player age %d is above the maximum age of %d", age, r.MaxAge))
	}
	if profile.Foreign && age < r.MinForeignAge {
		violations = append(violations, fmt.Sprintf("player age %d is below the minimum age of %d for category %s", age, r.MinForeignAge, player.Category))
	}

	if !r.ShirtNumberInRange(player.ShirtNumber) {
		violations = append(violations, fmt.Sprintf("shirt number %d must be between %d and %d", player.ShirtNumber, r.MinShirtNumber, r.MaxShirtNumber))
	}

	if target == models.ValidationValidated && known {
		for _, group := range profile.Groups() {
			count := stats.ValidatedByGroup[group]
			if player.IsValidated() {
				count--
			}
			limit := r.QuotaLimit(group)
			if count >= limit {
				violations = append(violations, fmt.Sprintf("%s quota reached: %d of %d validated players", group, count, limit))
			}
		}
	}

	return Result{Valid: len(violations) == 0, Errors: violations}
}

// CanAddPlayer и ValidatePlayer уровня пакета используют регламент Default.
func CanAddPlayer(rosterSize int) Decision {
	return Default.CanAddPlayer(rosterSize)
}

func ValidatePlayer(player *models.Player, stats TeamStats, target models.ValidationStatus, now time.Time) Result {
	return Default.ValidatePlayer(player, stats, target, now)
}
