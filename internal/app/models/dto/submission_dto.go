package dto

import (
	"time"

	"github.com/surgitrack/surgitrack/internal/app/models"
)

// CreateSubmissionRequest is the payload for creating a submission. The
// resulting status depends on the caller's role: candidates create pending
// submissions, supervisors create self-attested approved ones.
type CreateSubmissionRequest struct {
	CandDocID       int64     `json:"candDocId" binding:"required,gt=0"`
	SupervisorDocID int64     `json:"supervisorDocId" binding:"required,gt=0"`
	ProcedureID     int64     `json:"procedureId" binding:"required,gt=0"`
	MainDiagnosisID int64     `json:"mainDiagnosisId" binding:"required,gt=0"`
	PerformedAt     time.Time `json:"performedAt" binding:"required"`
	Participation   string    `json:"participation" binding:"required,oneof=observed assisted performed"`
	CaseNotes       string    `json:"caseNotes"`
}

// ReviewSubmissionRequest is the payload for the review operation.
type ReviewSubmissionRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=approved rejected" example:"approved"`
	Review   *string `json:"review,omitempty"`
}

// SubmissionFilterRequest holds listing filters.
type SubmissionFilterRequest struct {
	Status *models.SubStatus
	Page   int
	Size   int
}

// SubmissionResponse is the wire shape of a submission.
type SubmissionResponse struct {
	ID              int64      `json:"id"`
	CandDocID       int64      `json:"candDocId"`
	SupervisorDocID int64      `json:"supervisorDocId"`
	ProcedureID     int64      `json:"procedureId"`
	MainDiagnosisID int64      `json:"mainDiagnosisId"`
	PerformedAt     time.Time  `json:"performedAt"`
	Participation   string     `json:"participation"`
	CaseNotes       string     `json:"caseNotes,omitempty"`
	SubStatus       string     `json:"subStatus"`
	Review          *string    `json:"review,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy      *int64     `json:"reviewedBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// SubmissionListResponse is a paginated list of submissions.
type SubmissionListResponse struct {
	Submissions    []SubmissionResponse `json:"submissions"`
	PaginationInfo PaginationInfo       `json:"pagination"`
}

// NewSubmissionResponse converts a model to its wire shape.
func NewSubmissionResponse(s *models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:              s.ID,
		CandDocID:       s.CandDocID,
		SupervisorDocID: s.SupervisorDocID,
		ProcedureID:     s.ProcedureID,
		MainDiagnosisID: s.MainDiagnosisID,
		PerformedAt:     s.PerformedAt,
		Participation:   string(s.Participation),
		CaseNotes:       s.CaseNotes,
		SubStatus:       string(s.SubStatus),
		Review:          s.Review,
		ReviewedAt:      s.ReviewedAt,
		ReviewedBy:      s.ReviewedBy,
		CreatedAt:       s.CreatedAt,
	}
}
