package domain

import "time"

// Operator is a back-office user acting on tickets and change requests.
// Identity is established upstream; the service only resolves operators,
// it does not authenticate them.
type Operator struct {
	ID           string
	Name         string
	Email        string
	DepartmentID *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
