package models

import "github.com/google/uuid"

// StudyQuery filters the study listing. Empty fields match everything.
type StudyQuery struct {
	PatientID        string `json:"patient_id,omitempty"`
	StudyDate        string `json:"study_date,omitempty"`
	StudyDescription string `json:"study_description,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	Offset           int    `json:"offset,omitempty"`
}

// StudySummary is one row of the study listing
type StudySummary struct {
	StudyID          string `json:"study_id"`
	StudyDate        string `json:"study_date"`
	StudyTime        string `json:"study_time"`
	StudyDescription string `json:"study_description"`
	StudyDirectory   string `json:"study_directory"`
	NumberOfSeries   int    `json:"number_of_series"`
	StudyDateLong    string `json:"study_date_long"`
}

// AuditQuery selects audit entries by study, by user or both
type AuditQuery struct {
	StudyID string    `json:"study_id,omitempty"`
	UserID  uuid.UUID `json:"user_id,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}
