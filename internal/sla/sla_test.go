package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/workflow-service/internal/domain"
)

func TestDueDate_Multipliers(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		hours    int
		priority domain.TicketPriority
		want     time.Duration
	}{
		{"critical quarters the window", 48, domain.TicketPriorityCritical, 12 * time.Hour},
		{"high halves the window", 48, domain.TicketPriorityHigh, 24 * time.Hour},
		{"medium keeps the window", 48, domain.TicketPriorityMedium, 48 * time.Hour},
		{"low doubles the window", 48, domain.TicketPriorityLow, 96 * time.Hour},
		{"unknown priority maps to 1x", 10, domain.TicketPriority("Whenever"), 10 * time.Hour},
		{"odd base hours", 36, domain.TicketPriorityCritical, 9 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, now.Add(tc.want), DueDate(now, tc.hours, tc.priority))
		})
	}
}

func TestDueDate_NoPolicyIgnoresPriority(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// Without a positive base the fallback is a flat 48h regardless of
	// priority, including Critical.
	for _, p := range []domain.TicketPriority{
		domain.TicketPriorityCritical,
		domain.TicketPriorityHigh,
		domain.TicketPriorityMedium,
		domain.TicketPriorityLow,
	} {
		assert.Equal(t, now.Add(48*time.Hour), DueDate(now, 0, p), string(p))
		assert.Equal(t, now.Add(48*time.Hour), DueDate(now, -5, p), string(p))
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, Overdue(now, nil))
	assert.False(t, Overdue(now, &future))
	assert.False(t, Overdue(now, &now), "deadline itself is not overdue")
	assert.True(t, Overdue(now, &past))
}
