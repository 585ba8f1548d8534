package domain

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on-hold"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// ProjectStatuses lists every valid project status, in presentation order.
var ProjectStatuses = []ProjectStatus{
	ProjectPlanning,
	ProjectInProgress,
	ProjectCompleted,
	ProjectOnHold,
	ProjectCancelled,
}

// IsValid reports whether the status is one of the enumerated values.
func (s ProjectStatus) IsValid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Project is a unit of work performed for a client. ClientID is a weak
// reference: the client core never checks it against the client list, the
// server is authoritative.
type Project struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	ClientID     string        `json:"clientId"`
	Client       *Client       `json:"client,omitempty"`
	Status       ProjectStatus `json:"status"`
	StartDate    time.Time     `json:"startDate"`
	EndDate      *time.Time    `json:"endDate,omitempty"`
	Budget       float64       `json:"budget,omitempty"`
	Technologies []string      `json:"technologies,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
