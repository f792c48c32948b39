package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Boostly theme (CLI + TUI).

const (
	IconRocket  = "🚀"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconOpen    = "⬜"
	IconTrophy  = "🏆"
	IconParty   = "🎉"
	IconBolt    = "⚡"
	IconFire    = "🔥"
	IconTimer   = "⏱"
	IconBell    = "🔔"
	IconHeart   = "❤️"
	IconChat    = "💬"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconLoop    = "🔁"
	IconUndo    = "↩️"
	IconTrash   = "🗑"
	IconUp      = "▲"
	IconDown    = "▼"
	IconSame    = "•"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
	cSilver  = lipgloss.Color("250")
	cTeal    = lipgloss.Color("37")
	cPurple  = lipgloss.Color("135")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
	Toast       = lipgloss.NewStyle().Bold(true).Foreground(cGold).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cGold).Padding(0, 1)

	LevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

// badgeColors follows badge prestige from Newcomer to Legend.
var badgeColors = map[string]lipgloss.Color{
	"Newcomer":     cMuted,
	"Beginner":     cGood,
	"Rising Star":  cTeal,
	"Intermediate": cPrimary,
	"Advanced":     cPurple,
	"Pro":          cAccent,
	"Expert":       cWarn,
	"Master":       cSilver,
	"Legend":       cGold,
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Badge renders a badge label in its prestige color.
func Badge(badge string) string {
	c, ok := badgeColors[badge]
	if !ok {
		c = cMuted
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(badge)
}

func PriorityText(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "high":
		return Bad.Render("high")
	case "medium":
		return Warn.Render("medium")
	case "low":
		return Good.Render("low")
	default:
		return Muted.Render(priority)
	}
}

func CheckIcon(done bool) string {
	if done {
		return IconDone
	}
	return IconOpen
}

// TrendIcon renders a leaderboard trend ("up", "down", "same").
func TrendIcon(trend string) string {
	switch trend {
	case "up":
		return Good.Render(IconUp)
	case "down":
		return Bad.Render(IconDown)
	default:
		return Muted.Render(IconSame)
	}
}

// Points renders a signed points delta, e.g. "+50 pts".
func Points(delta int) string {
	switch {
	case delta > 0:
		return Good.Render(fmt.Sprintf("+%d pts", delta))
	case delta < 0:
		return Warn.Render(fmt.Sprintf("%d pts", delta))
	default:
		return Muted.Render("0 pts")
	}
}

// ProgressBar renders value/total as a fixed-width bar.
func ProgressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := value * width / total
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
