package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientRecord is a patient seen in any scanned study, keyed by MRN
type PatientRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MRN        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"mrn"`
	LastName   string    `gorm:"type:varchar(255)" json:"last_name"`
	FirstName  string    `gorm:"type:varchar(255)" json:"first_name"`
	MiddleName string    `gorm:"type:varchar(255)" json:"middle_name"`
	BirthDate  string    `gorm:"type:varchar(8)" json:"birth_date"` // YYYYMMDD
	Gender     string    `gorm:"type:varchar(16)" json:"gender"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (PatientRecord) TableName() string {
	return "patients"
}

// BeforeCreate hook
func (p *PatientRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// StudyRecord is the persisted form of a StudyDescription
type StudyRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudyID          string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"study_id"`
	Directory        string         `gorm:"type:text;not null" json:"directory"`
	StudyDate        string         `gorm:"type:varchar(16);index" json:"study_date"`
	StudyTime        string         `gorm:"type:varchar(16)" json:"study_time"`
	StudyDescription string         `gorm:"type:text" json:"study_description"`
	PatientID        *uuid.UUID     `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	Series           []SeriesRecord `gorm:"foreignKey:StudyRecordID;constraint:OnDelete:CASCADE" json:"series,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName overrides the table name
func (StudyRecord) TableName() string {
	return "studies"
}

// BeforeCreate hook
func (s *StudyRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SeriesRecord is the persisted form of a SeriesDescription. Thumbnails are
// not stored.
type SeriesRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudyRecordID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_series_study" json:"study_record_id"`
	SeriesID          string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_series_study" json:"series_id"`
	PatientMRN        string    `gorm:"type:varchar(64);index" json:"patient_mrn"`
	SeriesFileName    string    `gorm:"type:varchar(255)" json:"series_file_name"`
	SeriesDate        string    `gorm:"type:varchar(16)" json:"series_date"`
	SeriesTime        string    `gorm:"type:varchar(32)" json:"series_time"`
	SeriesDescription string    `gorm:"type:text" json:"series_description"`
	StudyDescription  string    `gorm:"type:text" json:"study_description"`
	PrivateStudyDate  string    `gorm:"type:varchar(32)" json:"private_study_date"`
	ImageTypes        string    `gorm:"type:text" json:"image_types"` // comma separated
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (SeriesRecord) TableName() string {
	return "series"
}

// BeforeCreate hook
func (s *SeriesRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewSeriesRecord converts a description plus its occupied slot names
func NewSeriesRecord(studyRecordID uuid.UUID, d *SeriesDescription, imageTypes []string) SeriesRecord {
	return SeriesRecord{
		StudyRecordID:     studyRecordID,
		SeriesID:          d.SeriesID,
		PatientMRN:        d.PatientID,
		SeriesFileName:    d.SeriesFileName,
		SeriesDate:        d.SeriesDate,
		SeriesTime:        d.SeriesTime,
		SeriesDescription: d.SeriesDescription,
		StudyDescription:  d.StudyDescription,
		PrivateStudyDate:  d.PrivateStudyDate,
		ImageTypes:        strings.Join(imageTypes, ","),
	}
}

// Description converts the record back to a SeriesDescription
func (s SeriesRecord) Description(studyID string) *SeriesDescription {
	return &SeriesDescription{
		PatientID:         s.PatientMRN,
		StudyID:           studyID,
		SeriesID:          s.SeriesID,
		SeriesFileName:    s.SeriesFileName,
		SeriesDate:        s.SeriesDate,
		SeriesTime:        s.SeriesTime,
		SeriesDescription: s.SeriesDescription,
		StudyDescription:  s.StudyDescription,
		PrivateStudyDate:  s.PrivateStudyDate,
	}
}

// NewStudyRecord converts a study description
func NewStudyRecord(d *StudyDescription) StudyRecord {
	return StudyRecord{
		StudyID:          d.StudyID,
		Directory:        d.StudyDirectory,
		StudyDate:        d.StudyDate,
		StudyTime:        d.StudyTime,
		StudyDescription: d.StudyDescription,
	}
}

// Description converts the record and its loaded series back to a
// StudyDescription
func (s StudyRecord) Description() *StudyDescription {
	d := &StudyDescription{
		StudyID:          s.StudyID,
		StudyDate:        s.StudyDate,
		StudyTime:        s.StudyTime,
		StudyDescription: s.StudyDescription,
		StudyDirectory:   s.Directory,
	}
	for _, sr := range s.Series {
		d.Series = append(d.Series, sr.Description(s.StudyID))
	}
	return d
}
