package engine

import "github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"

// Achievement is a milestone the user can earn.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

// AchievementChecker derives achievements from a user and their activity.
type AchievementChecker struct {
	user   storage.User
	tasks  []storage.Task
	habits []storage.Habit
}

func NewAchievementChecker(user storage.User, tasks []storage.Task, habits []storage.Habit) *AchievementChecker {
	return &AchievementChecker{user: user, tasks: tasks, habits: habits}
}

// GetAchievements returns all achievements with their earned status.
func (c *AchievementChecker) GetAchievements() []Achievement {
	return []Achievement{
		// Level milestones
		c.levelAchievement("beginner", "Beginner", "Reach level 2", "🌱", 2),
		c.levelAchievement("rising_star", "Rising Star", "Reach level 5", "🌿", 5),
		c.levelAchievement("intermediate", "Intermediate", "Reach level 10", "⭐", 10),
		c.levelAchievement("pro", "Pro", "Reach level 20", "🌟", 20),
		c.levelAchievement("legend", "Legend", "Reach level 50", "💫", 50),

		// Task completion milestones
		c.taskCountAchievement("first_task", "First Task", "Complete 1 task", "✓", 1),
		c.taskCountAchievement("productive", "Productive", "Complete 10 tasks", "📋", 10),
		c.taskCountAchievement("task_master", "Task Master", "Completed 50 tasks", "🏅", 50),

		c.focusAchievement("focus_champion", "Focus Champion", "10 hours of focus time", "⏱", 10),
		c.habitStreakAchievement("habit_builder", "Habit Builder", "7-day streak", "🎯", 7),
	}
}

// CountEarned returns how many achievements have been earned.
func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	earned := c.user.Level >= level
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

// Deleted tasks still count through the user's tasksCompleted counter.
func (c *AchievementChecker) taskCountAchievement(id, name, desc, icon string, count int) Achievement {
	done := 0
	for _, t := range c.tasks {
		if t.Completed {
			done++
		}
	}
	if c.user.TasksCompleted > done {
		done = c.user.TasksCompleted
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: done >= count}
}

func (c *AchievementChecker) focusAchievement(id, name, desc, icon string, hours float64) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.user.FocusHours >= hours}
}

func (c *AchievementChecker) habitStreakAchievement(id, name, desc, icon string, days int) Achievement {
	earned := false
	for _, h := range c.habits {
		if h.BestStreak >= days {
			earned = true
			break
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}
