package types

// Trajectory is the direction of a relationship's most recent change
type Trajectory string

const (
	TrajectoryImproving Trajectory = "improving"
	TrajectoryDeclining Trajectory = "declining"
	TrajectoryStable    Trajectory = "stable"
)

// TrajectoryOf derives the trajectory from the sum of the trust and
// respect deltas applied by one event.
func TrajectoryOf(trustDelta, respectDelta int) Trajectory {
	switch change := trustDelta + respectDelta; {
	case change > 0:
		return TrajectoryImproving
	case change < 0:
		return TrajectoryDeclining
	default:
		return TrajectoryStable
	}
}

// IsValid checks if the trajectory is valid
func (t Trajectory) IsValid() bool {
	switch t {
	case TrajectoryImproving,
		TrajectoryDeclining,
		TrajectoryStable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the trajectory
func (t Trajectory) String() string {
	return string(t)
}
