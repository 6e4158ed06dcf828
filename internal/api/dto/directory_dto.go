package dto

import "time"

// DepartmentRequest payload for create and update.
type DepartmentRequest struct {
	Name        string `json:"name"`
	IsBranch    bool   `json:"is_branch"`
	SLAHours    int    `json:"sla_hours"`
	Description string `json:"description"`
}

// DepartmentResponse directory entry.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsBranch    bool      `json:"is_branch"`
	SLAHours    int       `json:"sla_hours"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRequest payload.
type CategoryRequest struct {
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description"`
}

// CategoryResponse entry.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
	Description string `json:"description,omitempty"`
}

// OperatorRequest payload.
type OperatorRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	DepartmentID *string `json:"department_id"`
	Active       bool    `json:"active"`
}

// OperatorResponse staff entry.
type OperatorResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	DepartmentID *string `json:"department_id"`
	Active       bool    `json:"active"`
}
