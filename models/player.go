package models

import "time"

// PlayerCategory описывает основание, по которому игрок допускается в турнир.
type PlayerCategory string

const (
	CategoryResidentOwner     PlayerCategory = "RESIDENT_OWNER"
	CategoryResidentTenant    PlayerCategory = "RESIDENT_TENANT"
	CategoryResidentSpouse    PlayerCategory = "RESIDENT_SPOUSE"
	CategoryResidentChild     PlayerCategory = "RESIDENT_CHILD"
	CategoryResidentInLaw     PlayerCategory = "RESIDENT_IN_LAW"
	CategoryNonResidentOwner  PlayerCategory = "NON_RESIDENT_OWNER"
	CategoryPolice            PlayerCategory = "POLICE"
	CategoryElDoradoTeacher   PlayerCategory = "EL_DORADO_TEACHER"
	CategoryElDoradoWorker    PlayerCategory = "EL_DORADO_WORKER"
	CategoryFoundationTeacher PlayerCategory = "FOUNDATION_TEACHER"
	CategoryFoundationWorker  PlayerCategory = "FOUNDATION_WORKER"
	CategoryFoundationParent  PlayerCategory = "FOUNDATION_PARENT"
)

// AllPlayerCategories перечисляет категории в порядке регламента.
var AllPlayerCategories = []PlayerCategory{
	CategoryResidentOwner,
	CategoryResidentTenant,
	CategoryResidentSpouse,
	CategoryResidentChild,
	CategoryResidentInLaw,
	CategoryNonResidentOwner,
	CategoryPolice,
	CategoryElDoradoTeacher,
	CategoryElDoradoWorker,
	CategoryFoundationTeacher,
	CategoryFoundationWorker,
	CategoryFoundationParent,
}

func (c PlayerCategory) IsValid() bool {
	for _, known := range AllPlayerCategories {
		if c == known {
			return true
		}
	}
	return false
}

type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
)

func (s ValidationStatus) IsValid() bool {
	switch s {
	case ValidationPending, ValidationValidated, ValidationRejected:
		return true
	}
	return false
}

type Player struct {
	ID          string           `json:"id" db:"id"`
	TeamID      string           `json:"team_id" db:"team_id"`
	FirstName   string           `json:"first_name" db:"first_name"`
	LastName    string           `json:"last_name" db:"last_name"`
	NationalID  string           `json:"national_id" db:"national_id"`
	BirthDate   time.Time        `json:"birth_date" db:"birth_date"`
	ShirtNumber int              `json:"shirt_number" db:"shirt_number"`
	Category    PlayerCategory   `json:"category" db:"category"`
	Status      ValidationStatus `json:"status" db:"status"`
	ValidatedBy *string          `json:"validated_by,omitempty" db:"validated_by"`
	ValidatedAt *time.Time       `json:"validated_at,omitempty" db:"validated_at"`
	Notes       *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// AgeAt считает полные годы на дату now: если день рождения в этом году
// ещё не наступил, год не засчитывается.
func (p *Player) AgeAt(now time.Time) int {
	age := now.Year() - p.BirthDate.Year()
	if now.Month() < p.BirthDate.Month() ||
		(now.Month() == p.BirthDate.Month() && now.Day() < p.BirthDate.Day()) {
		age--
	}
	return age
}

func (p *Player) IsValidated() bool {
	return p.Status == ValidationValidated
}

// Locked сообщает, что игрок уже одобрен и его нельзя менять или удалять.
func (p *Player) Locked() bool {
	return p.IsValidated()
}
