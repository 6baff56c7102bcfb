package repository

import (
	"context"
	"fmt"

	"github.com/otcheredev/ris-dicom-imaging/internal/database"
	"github.com/otcheredev/ris-dicom-imaging/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PatientRepository handles patient database operations
type PatientRepository struct{}

// NewPatientRepository creates a new patient repository
func NewPatientRepository() *PatientRepository {
	return &PatientRepository{}
}

// Upsert inserts the patient or refreshes the demographics stored for its MRN
func (r *PatientRepository) Upsert(ctx context.Context, p *models.PatientRecord) error {
	return upsertPatient(database.DB.WithContext(ctx), p)
}

func upsertPatient(tx *gorm.DB, p *models.PatientRecord) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mrn"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_name", "first_name", "middle_name", "birth_date", "gender", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to upsert patient %s: %w", p.MRN, err)
	}
	// On conflict p still carries the ID generated for the insert.
	var stored models.PatientRecord
	if err := tx.Where("mrn = ?", p.MRN).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload patient %s: %w", p.MRN, err)
	}
	*p = stored
	return nil
}

// GetByMRN retrieves a patient by medical record number
func (r *PatientRepository) GetByMRN(ctx context.Context, mrn string) (*models.PatientRecord, error) {
	var p models.PatientRecord
	if err := database.DB.WithContext(ctx).Where("mrn = ?", mrn).First(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}
