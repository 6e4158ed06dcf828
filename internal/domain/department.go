package domain

import "time"

// DefaultSLAHours applies when a department has no configured SLA policy.
const DefaultSLAHours = 48

// Department represents an organizational unit or branch office.
// Referenced departments are protected: they cannot be deleted while
// tickets or change requests point at them.
type Department struct {
	ID          string
	Name        string
	IsBranch    bool
	SLAHours    int
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is an optional ticket classification maintained by admins.
type Category struct {
	ID          string
	Name        string
	IsActive    bool
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
