package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/maisonlabs/courtier/internal/analytics/domain"
	taskdomain "github.com/maisonlabs/courtier/internal/task/domain"
)

var frenchDayLabels = [7]string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}

func dayLabel(t time.Time) string {
	return frenchDayLabels[int(t.Weekday())]
}

// taskCategory buckets a task by keywords in its title. The vocabulary is the
// one agency staff actually type; anything unrecognized is desk work.
func taskCategory(title string) string {
	title = strings.ToLower(title)
	switch {
	case strings.Contains(title, "appel"),
		strings.Contains(title, "rappeler"),
		strings.Contains(title, "appeler"):
		return domain.TaskCategoryCall
	case strings.Contains(title, "visite"),
		strings.Contains(title, "rdv"):
		return domain.TaskCategoryVisit
	default:
		return domain.TaskCategoryAdmin
	}
}

func agendaCategory(title string) string {
	title = strings.ToLower(title)
	switch {
	case strings.Contains(title, "signature"):
		return domain.AgendaCategorySignature
	case strings.Contains(title, "estimation"),
		strings.Contains(title, "estimer"):
		return domain.AgendaCategoryEstimation
	default:
		return domain.AgendaCategoryVisit
	}
}

func priorityBucket(priority string) string {
	switch priority {
	case taskdomain.PriorityUrgent, taskdomain.PriorityHigh:
		return domain.PriorityBucketHigh
	case taskdomain.PriorityMedium:
		return domain.PriorityBucketMedium
	default:
		return domain.PriorityBucketLow
	}
}

func priorityRank(priority string) int {
	switch priority {
	case taskdomain.PriorityUrgent:
		return 3
	case taskdomain.PriorityHigh:
		return 2
	case taskdomain.PriorityMedium:
		return 1
	default:
		return 0
	}
}

// relativeAge renders the age of a communication the way the inbox widget
// shows it: minutes under an hour, hours under a day, days after that.
func relativeAge(now, t time.Time) string {
	elapsed := now.Sub(t)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%d min", int(elapsed.Minutes()))
	}
	if elapsed < 24*time.Hour {
		return fmt.Sprintf("%dh", int(elapsed.Hours()))
	}
	return fmt.Sprintf("%dj", int(elapsed.Hours()/24))
}

// growthPercent is (current-previous)/previous*100 with the zero-division rule
// applied: no baseline means no growth figure, not an infinite one.
func growthPercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func ratioPercent(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator * 100
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
