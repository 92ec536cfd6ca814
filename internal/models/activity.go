package models

import "time"

type ActivityStatus string

const (
	StatusPlanned    ActivityStatus = "planned"
	StatusInProgress ActivityStatus = "in progress"
	StatusCompleted  ActivityStatus = "completed"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Activity struct {
	ID          int64          `json:"id"`
	OwnerID     int64          `json:"-"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      ActivityStatus `json:"status"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

type CreateActivityRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      ActivityStatus `json:"status"`
}

type UpdateActivityRequest struct {
	Status ActivityStatus `json:"status"`
}
