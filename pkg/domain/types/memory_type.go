package types

import "fmt"

// MemoryType groups memories by the part of the game they came from
type MemoryType string

const (
	MemoryTypeBattle           MemoryType = "battle"
	MemoryTypeSocial           MemoryType = "social"
	MemoryTypeTraining         MemoryType = "training"
	MemoryTypeAchievement      MemoryType = "achievement"
	MemoryTypeConflict         MemoryType = "conflict"
	MemoryTypeBonding          MemoryType = "bonding"
	MemoryTypeFinancial        MemoryType = "financial"
	MemoryTypeTherapy          MemoryType = "therapy"
	MemoryTypeConfession       MemoryType = "confession"
	MemoryTypeRealEstate       MemoryType = "real_estate"
	MemoryTypePersonalProblems MemoryType = "personal_problems"
	MemoryTypeGroupActivity    MemoryType = "group_activity"
	MemoryTypeEquipment        MemoryType = "equipment"
	MemoryTypeSkills           MemoryType = "skills"
	MemoryTypeStrategy         MemoryType = "strategy"
	MemoryTypeDrama            MemoryType = "drama"
	MemoryTypeCasualSocial     MemoryType = "casual_social"
)

// AllMemoryTypes returns all valid memory types
func AllMemoryTypes() []MemoryType {
	return []MemoryType{
		MemoryTypeBattle,
		MemoryTypeSocial,
		MemoryTypeTraining,
		MemoryTypeAchievement,
		MemoryTypeConflict,
		MemoryTypeBonding,
		MemoryTypeFinancial,
		MemoryTypeTherapy,
		MemoryTypeConfession,
		MemoryTypeRealEstate,
		MemoryTypePersonalProblems,
		MemoryTypeGroupActivity,
		MemoryTypeEquipment,
		MemoryTypeSkills,
		MemoryTypeStrategy,
		MemoryTypeDrama,
		MemoryTypeCasualSocial,
	}
}

// IsValid checks if the memory type is valid
func (m MemoryType) IsValid() bool {
	for _, v := range AllMemoryTypes() {
		if v == m {
			return true
		}
	}
	return false
}

// String returns the string representation of the memory type
func (m MemoryType) String() string {
	return string(m)
}

// ParseMemoryType parses a string into a MemoryType
func ParseMemoryType(s string) (MemoryType, error) {
	m := MemoryType(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid memory type: %s", s)
	}
	return m, nil
}
