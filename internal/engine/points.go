package engine

const (
	// PointsPerLevel is the width of every level band.
	PointsPerLevel = 100

	HabitBasePoints     = 20
	HabitStreakBonus    = 5
	HabitMaxStreakBonus = 50
)

// CalculateLevel maps a points total to its level: floor(points/100)+1.
// Negative totals are treated as 0.
func CalculateLevel(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// PointsToNextLevel returns how many points remain until the next level.
func PointsToNextLevel(points int) int {
	if points < 0 {
		points = 0
	}
	return CalculateLevel(points)*PointsPerLevel - points
}

// LevelProgress returns the percent (0-99) of the current level band already earned.
func LevelProgress(points int) int {
	if points < 0 {
		points = 0
	}
	return points % PointsPerLevel * 100 / PointsPerLevel
}

type badgeThreshold struct {
	level int
	badge string
}

// Highest first.
var badgeThresholds = []badgeThreshold{
	{50, "Legend"},
	{40, "Master"},
	{30, "Expert"},
	{20, "Pro"},
	{15, "Advanced"},
	{10, "Intermediate"},
	{5, "Rising Star"},
	{2, "Beginner"},
}

// DefaultBadge is held by every level below the first threshold.
const DefaultBadge = "Newcomer"

// BadgeForLevel returns the label of the highest threshold the level reaches.
func BadgeForLevel(level int) string {
	for _, t := range badgeThresholds {
		if level >= t.level {
			return t.badge
		}
	}
	return DefaultBadge
}

// BadgeRank orders badges by prestige: Newcomer is 0, Legend is the highest.
// Unknown labels rank -1.
func BadgeRank(badge string) int {
	if badge == DefaultBadge {
		return 0
	}
	for i, t := range badgeThresholds {
		if t.badge == badge {
			return len(badgeThresholds) - i
		}
	}
	return -1
}

// TaskPoints returns the points a task of the given priority is worth.
func TaskPoints(p Priority) int {
	switch p {
	case PriorityLow:
		return 10
	case PriorityHigh:
		return 50
	default:
		return 25
	}
}

// HabitPoints returns 20 plus 5 per streak day, with the bonus capped at 50.
func HabitPoints(streakDays int) int {
	if streakDays < 0 {
		streakDays = 0
	}
	bonus := streakDays * HabitStreakBonus
	if bonus > HabitMaxStreakBonus {
		bonus = HabitMaxStreakBonus
	}
	return HabitBasePoints + bonus
}

// FocusPoints returns the points and duration in minutes of a focus session kind.
func FocusPoints(k FocusKind) (points int, minutes int, err error) {
	switch k {
	case FocusShort:
		return 15, 5, nil
	case FocusWork:
		return 50, 25, nil
	case FocusLong:
		return 100, 15, nil
	default:
		return 0, 0, &ValidationError{Field: "kind", Reason: "unknown focus session kind " + string(k)}
	}
}
