package models

import "time"

// Candidate defines the trainee model based on the 'candidates' table
type Candidate struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	UserID       int64     `json:"userId" db:"user_id"`
	FirstName    string    `json:"firstName" db:"first_name" example:"John"`
	LastName     string    `json:"lastName" db:"last_name" example:"Doe"`
	Email        string    `json:"email" db:"email" example:"candidate@hospital.org"`
	TrainingYear int       `json:"trainingYear" db:"training_year" example:"3"` // Current year of the training programme
	EnrolledAt   time.Time `json:"enrolledAt" db:"enrolled_at"`
}

// Supervisor defines the supervising surgeon model based on the 'supervisors' table
type Supervisor struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"userId" db:"user_id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Title     string `json:"title" db:"title" example:"Consultant"`
	Specialty string `json:"specialty,omitempty" db:"specialty"`
}

// Procedure is a shared read-only lookup of surgical procedures.
type Procedure struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code" example:"LAP-CHOLE"`
	Name string `json:"name" db:"name" example:"Laparoscopic cholecystectomy"`
}

// Diagnosis is a shared read-only lookup of main diagnoses.
type Diagnosis struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code" example:"K80.2"`
	Name string `json:"name" db:"name"`
}
