package engine

import "strings"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority is case and whitespace tolerant. Unknown input yields medium.
func ParsePriority(input string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(input)))
	if !p.IsValid() {
		return PriorityMedium
	}
	return p
}

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryHealth   Category = "Health"
	CategoryLearning Category = "Learning"
	CategoryPersonal Category = "Personal"
)

// Categories lists the task and habit categories in display order.
var Categories = []Category{CategoryWork, CategoryHealth, CategoryLearning, CategoryPersonal}

// ParseCategory matches case-insensitively. Unknown or empty input yields Personal.
func ParseCategory(input string) Category {
	s := strings.TrimSpace(input)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return CategoryPersonal
}

type FocusKind string

const (
	FocusShort FocusKind = "short"
	FocusWork  FocusKind = "work"
	FocusLong  FocusKind = "long"
)

func ParseFocusKind(input string) FocusKind {
	return FocusKind(strings.ToLower(strings.TrimSpace(input)))
}

type NotificationType string

const (
	NotificationAchievement NotificationType = "achievement"
	NotificationReminder    NotificationType = "reminder"
	NotificationSocial      NotificationType = "social"
	NotificationSystem      NotificationType = "system"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationAchievement, NotificationReminder, NotificationSocial, NotificationSystem:
		return true
	default:
		return false
	}
}

type PostType string

const (
	PostTip         PostType = "tip"
	PostAchievement PostType = "achievement"
	PostMotivation  PostType = "motivation"
	PostVideo       PostType = "video"
)

func (t PostType) IsValid() bool {
	switch t {
	case PostTip, PostAchievement, PostMotivation, PostVideo:
		return true
	default:
		return false
	}
}

type Period string

const (
	PeriodAll    Period = "all"
	PeriodWeekly Period = "weekly"
)

const (
	DefaultAvatar = "gradient-primary"
	DefaultRank   = 999
)
