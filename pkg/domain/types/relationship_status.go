package types

// RelationshipStatus is the discrete band a relationship falls into
type RelationshipStatus string

const (
	RelationshipMortalEnemies RelationshipStatus = "mortal_enemies"
	RelationshipEnemies       RelationshipStatus = "enemies"
	RelationshipRivals        RelationshipStatus = "rivals"
	RelationshipAntagonistic  RelationshipStatus = "antagonistic"
	RelationshipTense         RelationshipStatus = "tense"
	RelationshipStrangers     RelationshipStatus = "strangers"
	RelationshipAcquaintances RelationshipStatus = "acquaintances"
	RelationshipFriendly      RelationshipStatus = "friendly"
	RelationshipFriends       RelationshipStatus = "friends"
	RelationshipCloseFriends  RelationshipStatus = "close_friends"
	RelationshipBestFriends   RelationshipStatus = "best_friends"
)

// AllRelationshipStatuses returns every band from most hostile to closest
func AllRelationshipStatuses() []RelationshipStatus {
	return []RelationshipStatus{
		RelationshipMortalEnemies,
		RelationshipEnemies,
		RelationshipRivals,
		RelationshipAntagonistic,
		RelationshipTense,
		RelationshipStrangers,
		RelationshipAcquaintances,
		RelationshipFriendly,
		RelationshipFriends,
		RelationshipCloseFriends,
		RelationshipBestFriends,
	}
}

// StatusFromScore maps trust+affection to its band. Band upper bounds are
// inclusive; exactly zero is strangers.
func StatusFromScore(score int) RelationshipStatus {
	switch {
	case score <= -80:
		return RelationshipMortalEnemies
	case score <= -60:
		return RelationshipEnemies
	case score <= -40:
		return RelationshipRivals
	case score <= -20:
		return RelationshipAntagonistic
	case score <= -1:
		return RelationshipTense
	case score == 0:
		return RelationshipStrangers
	case score <= 20:
		return RelationshipAcquaintances
	case score <= 40:
		return RelationshipFriendly
	case score <= 60:
		return RelationshipFriends
	case score <= 80:
		return RelationshipCloseFriends
	default:
		return RelationshipBestFriends
	}
}

// IsHostile reports whether the band is below strangers
func (s RelationshipStatus) IsHostile() bool {
	switch s {
	case RelationshipMortalEnemies,
		RelationshipEnemies,
		RelationshipRivals,
		RelationshipAntagonistic,
		RelationshipTense:
		return true
	default:
		return false
	}
}

// IsValid checks if the relationship status is valid
func (s RelationshipStatus) IsValid() bool {
	for _, v := range AllRelationshipStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// String returns the string representation of the relationship status
func (s RelationshipStatus) String() string {
	return string(s)
}
