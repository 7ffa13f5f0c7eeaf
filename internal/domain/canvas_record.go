package domain

import "time"

// CanvasStatus tracks a canvas record through the collection flow.
type CanvasStatus string

const (
	CanvasCollecting CanvasStatus = "COLLECTING"
	CanvasPreviewing CanvasStatus = "PREVIEWING"
	CanvasConfirmed  CanvasStatus = "CONFIRMED"
	CanvasCancelled  CanvasStatus = "CANCELLED"
)

// Canvas is the relational record of one canvas instance. The layout document
// lives in the object store; the record exists for listing and ownership.
type Canvas struct {
	ID         string
	UserID     string
	TemplateID string
	Status     CanvasStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
