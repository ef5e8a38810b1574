package repository

import (
	"errors"
	"fmt"
	"log"
	"mio/models"

	"gorm.io/gorm"
)

// AssessmentResultRepository defines the interface for persisting
// classification results. Results are append-only: re-assessment creates a
// new row and never touches older ones, so there is no update method.
type AssessmentResultRepository interface {
	CreateResult(result *models.AssessmentResult) error
	GetResultByID(resultID uint) (*models.AssessmentResult, error)
	GetLatestResultByUserID(userID string) (*models.AssessmentResult, error)
}

type assessmentResultRepository struct {
	db *gorm.DB
}

// NewAssessmentResultRepository creates a new instance of AssessmentResultRepository.
func NewAssessmentResultRepository(db *gorm.DB) AssessmentResultRepository {
	return &assessmentResultRepository{db: db}
}

// CreateResult inserts a new assessment result.
func (r *assessmentResultRepository) CreateResult(result *models.AssessmentResult) error {
	if result == nil {
		log.Printf("ERROR: [AssessmentResultRepository] CreateResult: result cannot be nil")
		return errors.New("result cannot be nil")
	}
	if result.UserID == "" {
		log.Printf("ERROR: [AssessmentResultRepository] CreateResult: UserID cannot be empty")
		return errors.New("user ID cannot be empty")
	}
	err := r.db.Create(result).Error
	if err != nil {
		log.Printf("ERROR: [AssessmentResultRepository] Failed to create result for userID %s: %v", result.UserID, err)
		return fmt.Errorf("failed to create assessment result for userID %s: %w", result.UserID, err)
	}
	log.Printf("INFO: [AssessmentResultRepository] Created assessment result ID %d for userID %s (primary '%s', confidence %d).",
		result.ID, result.UserID, result.PrimaryPattern, result.Confidence)
	return nil
}

// GetResultByID retrieves a result by its ID.
// Returns (nil, nil) when the result does not exist.
func (r *assessmentResultRepository) GetResultByID(resultID uint) (*models.AssessmentResult, error) {
	var result models.AssessmentResult
	err := r.db.First(&result, resultID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [AssessmentResultRepository] Result with ID %d not found.", resultID)
			return nil, nil
		}
		log.Printf("ERROR: [AssessmentResultRepository] Failed to retrieve result ID %d: %v", resultID, err)
		return nil, fmt.Errorf("failed to retrieve assessment result ID %d: %w", resultID, err)
	}
	return &result, nil
}

// GetLatestResultByUserID retrieves the most recent result for a user.
// Returns (nil, nil) when the user has never completed an assessment.
func (r *assessmentResultRepository) GetLatestResultByUserID(userID string) (*models.AssessmentResult, error) {
	var result models.AssessmentResult
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [AssessmentResultRepository] No assessment result found for userID '%s'.", userID)
			return nil, nil
		}
		log.Printf("ERROR: [AssessmentResultRepository] Failed to retrieve latest result for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to retrieve latest assessment result for userID %s: %w", userID, err)
	}
	return &result, nil
}
