package models

import "time"

// ClinicalSub defines a candidate's clinical-activity log pending supervisor
// approval. Structurally parallel to Submission, based on the 'clinical_subs'
// table.
type ClinicalSub struct {
	ID              int64      `json:"id" db:"id" example:"1"`
	CandDocID       int64      `json:"candDocId" db:"cand_doc_id"`
	SupervisorDocID int64      `json:"supervisorDocId" db:"supervisor_doc_id"`
	DateCA          time.Time  `json:"dateCA" db:"date_ca"` // When the clinical activity took place
	TypeCA          string     `json:"typeCA" db:"type_ca" example:"ward-round"`
	Description     string     `json:"description" db:"description"`
	SubStatus       SubStatus  `json:"subStatus" db:"sub_status" example:"pending"`
	Review          *string    `json:"review,omitempty" db:"review"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewedBy      *int64     `json:"reviewedBy,omitempty" db:"reviewed_by"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}

// IsDecided reports whether the clinical submission has already been reviewed.
func (c *ClinicalSub) IsDecided() bool {
	return c.SubStatus.IsTerminal()
}
