package repository

import (
	"context"
	"fmt"

	"github.com/otcheredev/ris-dicom-imaging/internal/database"
	"github.com/otcheredev/ris-dicom-imaging/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StudyRepository persists study and series descriptions
type StudyRepository struct{}

// NewStudyRepository creates a new study repository
func NewStudyRepository() *StudyRepository {
	return &StudyRepository{}
}

// Save stores the study, its series and optionally its patient in one
// transaction. Series rows of an earlier scan of the same study are replaced.
// imageTypes lists the occupied slots per series id.
func (r *StudyRepository) Save(ctx context.Context, study *models.StudyDescription, imageTypes map[string][]string, patient *models.PatientRecord) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.NewStudyRecord(study)

		if patient != nil && patient.MRN != "" {
			if err := upsertPatient(tx, patient); err != nil {
				return err
			}
			rec.PatientID = &patient.ID
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "study_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"directory", "study_date", "study_time", "study_description", "patient_id", "updated_at"}),
		}).Omit("Series").Create(&rec).Error
		if err != nil {
			return fmt.Errorf("failed to save study %s: %w", study.StudyID, err)
		}
		var stored models.StudyRecord
		if err := tx.Where("study_id = ?", study.StudyID).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload study %s: %w", study.StudyID, err)
		}
		rec.ID = stored.ID

		if err := tx.Where("study_record_id = ?", rec.ID).Delete(&models.SeriesRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear series of study %s: %w", study.StudyID, err)
		}
		if len(study.Series) == 0 {
			return nil
		}

		series := make([]models.SeriesRecord, 0, len(study.Series))
		for _, d := range study.Series {
			series = append(series, models.NewSeriesRecord(rec.ID, d, imageTypes[d.SeriesID]))
		}
		if err := tx.Create(&series).Error; err != nil {
			return fmt.Errorf("failed to save series of study %s: %w", study.StudyID, err)
		}
		return nil
	})
}

// GetByStudyID retrieves a study with its series
func (r *StudyRepository) GetByStudyID(ctx context.Context, studyID string) (*models.StudyRecord, error) {
	var rec models.StudyRecord
	if err := database.DB.WithContext(ctx).
		Preload("Series").
		Where("study_id = ?", studyID).
		First(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to get study: %w", err)
	}
	return &rec, nil
}

// List retrieves studies matching q, newest first
func (r *StudyRepository) List(ctx context.Context, q models.StudyQuery) ([]models.StudyRecord, error) {
	query := database.DB.WithContext(ctx).
		Preload("Series").
		Order("study_date DESC, study_time DESC")

	if q.StudyDate != "" {
		query = query.Where("study_date = ?", q.StudyDate)
	}
	if q.StudyDescription != "" {
		query = query.Where("study_description ILIKE ?", "%"+q.StudyDescription+"%")
	}
	if q.PatientID != "" {
		query = query.Where("id IN (?)", database.DB.Model(&models.SeriesRecord{}).
			Select("study_record_id").
			Where("patient_mrn = ?", q.PatientID))
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var recs []models.StudyRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list studies: %w", err)
	}
	return recs, nil
}

// UpdateSeriesDescription replaces the free-text description of one series
func (r *StudyRepository) UpdateSeriesDescription(ctx context.Context, studyID, seriesID, description string) error {
	res := database.DB.WithContext(ctx).
		Model(&models.SeriesRecord{}).
		Where("series_id = ? AND study_record_id IN (?)", seriesID,
			database.DB.Model(&models.StudyRecord{}).Select("id").Where("study_id = ?", studyID)).
		Update("series_description", description)
	if res.Error != nil {
		return fmt.Errorf("failed to update series description: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update series description: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
