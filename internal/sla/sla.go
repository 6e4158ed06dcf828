// Package sla derives ticket deadlines from department policy and
// ticket priority.
package sla

import (
	"time"

	"github.com/spec-kit/workflow-service/internal/domain"
)

// multipliers scales the department base hours by priority. Unknown
// priorities fall back to 1.
var multipliers = map[domain.TicketPriority]float64{
	domain.TicketPriorityCritical: 0.25,
	domain.TicketPriorityHigh:     0.5,
	domain.TicketPriorityMedium:   1,
	domain.TicketPriorityLow:      2,
}

// DueDate computes the SLA deadline for a ticket created at now.
//
// A department without a positive SLA policy yields now + 48h with the
// priority ignored entirely. That asymmetry (priority applies only when
// a policy exists) matches long-standing production behavior and is kept
// as is rather than normalized.
func DueDate(now time.Time, baseHours int, priority domain.TicketPriority) time.Time {
	if baseHours <= 0 {
		return now.Add(time.Duration(domain.DefaultSLAHours) * time.Hour)
	}
	mult, ok := multipliers[priority]
	if !ok {
		mult = 1
	}
	dueHours := float64(baseHours) * mult
	return now.Add(time.Duration(dueHours * float64(time.Hour)))
}

// Overdue reports whether a deadline has passed. A ticket without a
// deadline is never overdue.
func Overdue(now time.Time, due *time.Time) bool {
	return due != nil && now.After(*due)
}
