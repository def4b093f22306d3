package model

import (
	"fmt"
	"time"
)

// HistoryEntry is the immutable record of one task status transition.
type HistoryEntry struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"taskId"`
	PreviousStatus Status    `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
	Timestamp      time.Time `json:"timestamp"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	UserRole       Role      `json:"userRole"`
}

// Validate validates the history entry.
func (h HistoryEntry) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("history id is required: %w", ErrNotValid)
	}
	if h.TaskID == "" {
		return fmt.Errorf("history task id is required: %w", ErrNotValid)
	}
	if h.NewStatus == "" {
		return fmt.Errorf("history new status is required: %w", ErrNotValid)
	}
	if h.PreviousStatus == h.NewStatus {
		return fmt.Errorf("history entry must change the status: %w", ErrNotValid)
	}
	if h.UserID == "" {
		return fmt.Errorf("history user is required: %w", ErrNotValid)
	}
	if h.Timestamp.IsZero() {
		return fmt.Errorf("history timestamp is required: %w", ErrNotValid)
	}
	return nil
}
