package dto

import "github.com/google/uuid"

// DateLayout is the wire format of product dates.
const DateLayout = "2006-01-02"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type ProductRequest struct {
	Name        string `json:"name"         validate:"required,max=100"`
	Model       string `json:"model"        validate:"required,max=100"`
	ReleaseDate string `json:"release_date" validate:"required,datetime=2006-01-02"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	ReleaseDate string    `json:"release_date"`
	CreatedAt   string    `json:"created_at"`
}
