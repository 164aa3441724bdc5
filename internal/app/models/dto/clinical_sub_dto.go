package dto

import (
	"time"

	"github.com/surgitrack/surgitrack/internal/app/models"
)

// CreateClinicalSubRequest is the payload for logging a clinical activity.
type CreateClinicalSubRequest struct {
	CandDocID       int64     `json:"candDocId" binding:"required,gt=0"`
	SupervisorDocID int64     `json:"supervisorDocId" binding:"required,gt=0"`
	DateCA          time.Time `json:"dateCA" binding:"required"`
	TypeCA          string    `json:"typeCA" binding:"required"`
	Description     string    `json:"description" binding:"required"`
}

// UpdateClinicalSubRequest is the payload for the update operation. Any field
// may be changed through this one operation; a status change to a decision
// value is what triggers candidate notification.
type UpdateClinicalSubRequest struct {
	DateCA      *time.Time `json:"dateCA,omitempty"`
	TypeCA      *string    `json:"typeCA,omitempty"`
	Description *string    `json:"description,omitempty"`
	SubStatus   *string    `json:"subStatus,omitempty" binding:"omitempty,oneof=approved rejected"`
	Review      *string    `json:"review,omitempty"`
}

// ClinicalSubResponse is the wire shape of a clinical submission.
type ClinicalSubResponse struct {
	ID              int64      `json:"id"`
	CandDocID       int64      `json:"candDocId"`
	SupervisorDocID int64      `json:"supervisorDocId"`
	DateCA          time.Time  `json:"dateCA"`
	TypeCA          string     `json:"typeCA"`
	Description     string     `json:"description"`
	SubStatus       string     `json:"subStatus"`
	Review          *string    `json:"review,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy      *int64     `json:"reviewedBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ClinicalSubListResponse is a paginated list of clinical submissions.
type ClinicalSubListResponse struct {
	ClinicalSubs   []ClinicalSubResponse `json:"clinicalSubs"`
	PaginationInfo PaginationInfo        `json:"pagination"`
}

// NewClinicalSubResponse converts a model to its wire shape.
func NewClinicalSubResponse(c *models.ClinicalSub) ClinicalSubResponse {
	return ClinicalSubResponse{
		ID:              c.ID,
		CandDocID:       c.CandDocID,
		SupervisorDocID: c.SupervisorDocID,
		DateCA:          c.DateCA,
		TypeCA:          c.TypeCA,
		Description:     c.Description,
		SubStatus:       string(c.SubStatus),
		Review:          c.Review,
		ReviewedAt:      c.ReviewedAt,
		ReviewedBy:      c.ReviewedBy,
		CreatedAt:       c.CreatedAt,
	}
}
