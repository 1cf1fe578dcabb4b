package service

import (
	"testing"
	"time"

	"github.com/maisonlabs/courtier/internal/analytics/domain"
	taskdomain "github.com/maisonlabs/courtier/internal/task/domain"
	"github.com/stretchr/testify/assert"
)

func TestTaskCategory(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Appeler M. Dupont", domain.TaskCategoryCall},
		{"Rappeler le notaire", domain.TaskCategoryCall},
		{"appel de suivi", domain.TaskCategoryCall},
		{"Visite villa Cannes", domain.TaskCategoryVisit},
		{"RDV agence", domain.TaskCategoryVisit},
		{"Préparer le compromis", domain.TaskCategoryAdmin},
		{"", domain.TaskCategoryAdmin},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, taskCategory(tc.title), "title %q", tc.title)
	}
}

func TestAgendaCategory(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Signature acte définitif", domain.AgendaCategorySignature},
		{"Estimation appartement T3", domain.AgendaCategoryEstimation},
		{"Estimer villa Mougins", domain.AgendaCategoryEstimation},
		{"Visite maison Biarritz", domain.AgendaCategoryVisit},
		{"Autre chose", domain.AgendaCategoryVisit},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, agendaCategory(tc.title), "title %q", tc.title)
	}
}

func TestPriorityBucket(t *testing.T) {
	assert.Equal(t, domain.PriorityBucketHigh, priorityBucket(taskdomain.PriorityUrgent))
	assert.Equal(t, domain.PriorityBucketHigh, priorityBucket(taskdomain.PriorityHigh))
	assert.Equal(t, domain.PriorityBucketMedium, priorityBucket(taskdomain.PriorityMedium))
	assert.Equal(t, domain.PriorityBucketLow, priorityBucket(taskdomain.PriorityLow))
	assert.Equal(t, domain.PriorityBucketLow, priorityBucket(""))
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		at       time.Time
		expected string
	}{
		{now.Add(-5 * time.Minute), "5 min"},
		{now.Add(-59 * time.Minute), "59 min"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-26 * time.Hour), "1j"},
		{now.Add(-80 * time.Hour), "3j"},
		{now.Add(time.Minute), "0 min"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, relativeAge(now, tc.at))
	}
}

func TestGrowthPercent(t *testing.T) {
	assert.InDelta(t, -50, growthPercent(50, 100), 0.001)
	assert.InDelta(t, 100, growthPercent(200, 100), 0.001)
	assert.Zero(t, growthPercent(100, 0))
	assert.Zero(t, growthPercent(0, 0))
}

func TestRatioPercent(t *testing.T) {
	assert.InDelta(t, 25, ratioPercent(1, 4), 0.001)
	assert.Zero(t, ratioPercent(5, 0))
}

func TestDayLabel(t *testing.T) {
	// 2025-03-09 is a Sunday.
	sunday := time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC)
	labels := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		labels = append(labels, dayLabel(sunday.AddDate(0, 0, i)))
	}
	assert.Equal(t, []string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}, labels)
}
