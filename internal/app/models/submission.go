package models

import "time"

// ParticipationLevel describes the candidate's role in the reported procedure.
type ParticipationLevel string

const (
	ParticipationObserved  ParticipationLevel = "observed"
	ParticipationAssisted  ParticipationLevel = "assisted"
	ParticipationPerformed ParticipationLevel = "performed"
)

// IsValid reports whether the level is one of the known levels.
func (p ParticipationLevel) IsValid() bool {
	switch p {
	case ParticipationObserved, ParticipationAssisted, ParticipationPerformed:
		return true
	}
	return false
}

// Submission defines one candidate's report of participation in a surgical
// procedure, pending supervisor sign-off. Based on the 'submissions' table.
// Field names are stable wire identifiers other systems depend on.
type Submission struct {
	ID              int64              `json:"id" db:"id" example:"1"`
	CandDocID       int64              `json:"candDocId" db:"cand_doc_id"`             // Issuing candidate
	SupervisorDocID int64              `json:"supervisorDocId" db:"supervisor_doc_id"` // Assigned reviewer
	ProcedureID     int64              `json:"procedureId" db:"procedure_id"`
	MainDiagnosisID int64              `json:"mainDiagnosisId" db:"main_diagnosis_id"`
	PerformedAt     time.Time          `json:"performedAt" db:"performed_at"` // When the procedure took place
	Participation   ParticipationLevel `json:"participation" db:"participation" example:"assisted"`
	CaseNotes       string             `json:"caseNotes,omitempty" db:"case_notes"`
	SubStatus       SubStatus          `json:"subStatus" db:"sub_status" example:"pending"`
	Review          *string            `json:"review,omitempty" db:"review"` // Reviewer comment, set with the decision
	ReviewedAt      *time.Time         `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewedBy      *int64             `json:"reviewedBy,omitempty" db:"reviewed_by"`
	CreatedAt       time.Time          `json:"createdAt" db:"created_at"`
}

// IsDecided reports whether the submission has already been reviewed.
func (s *Submission) IsDecided() bool {
	return s.SubStatus.IsTerminal()
}
