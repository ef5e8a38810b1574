package models

import (
	"time"
)

// Pattern is a named behavioral archetype the classification engine can assign.
type Pattern string

const (
	PatternPastPrison            Pattern = "past_prison"
	PatternSuccessSabotage       Pattern = "success_sabotage"
	PatternCompassCrisis         Pattern = "compass_crisis"
	PatternIdentityCollision     Pattern = "identity_collision"
	PatternComparisonCatastrophe Pattern = "comparison_catastrophe"
	PatternMotivationCollapse    Pattern = "motivation_collapse"
	PatternPerformanceLiability  Pattern = "performance_liability"
)

// Temperament is how a user naturally engages with change. It never feeds
// pattern scoring; the recommendation rule uses it to prefer protocols
// whose practices suit the user's style.
type Temperament string

const (
	TemperamentWarrior   Temperament = "warrior"
	TemperamentSage      Temperament = "sage"
	TemperamentConnector Temperament = "connector"
	TemperamentBuilder   Temperament = "builder"
)

// ImpactArea is the life domain a user tags their assessment with.
// It is descriptive only and never feeds pattern scoring.
type ImpactArea string

const (
	ImpactAreaCareer        ImpactArea = "career"
	ImpactAreaRelationships ImpactArea = "relationships"
	ImpactAreaHealth        ImpactArea = "health"
	ImpactAreaFinances      ImpactArea = "finances"
	ImpactAreaPurpose       ImpactArea = "purpose"
)

// QuestionType defines the type of an assessment question.
type QuestionType string

const (
	QuestionTypeSingleChoice    QuestionType = "single_choice"    // Radio buttons
	QuestionTypeIntensitySlider QuestionType = "intensity_slider" // Numeric slider
)

// QuestionOption is one selectable answer of a single-choice question.
// BaseScore feeds the raw severity total; PatternWeights feed the
// per-pattern accumulators. Non-diagnostic options carry neither.
type QuestionOption struct {
	ID             string          `json:"id"`
	Text           string          `json:"text"`
	BaseScore      int             `json:"base_score"`
	PatternWeights map[Pattern]int `json:"pattern_weights,omitempty"`
}

// Question defines a question in the scoring table.
// Question definitions are hardcoded in the services package and are not
// stored in the database, so no GORM tags are needed here.
type Question struct {
	ID            string           `json:"id"`
	Order         int              `json:"order"`
	Text          string           `json:"text"`
	QuestionType  QuestionType     `json:"question_type"`
	Options       []QuestionOption `json:"options,omitempty"` // single_choice only
	SliderMin     int              `json:"slider_min,omitempty"`
	SliderMax     int              `json:"slider_max,omitempty"`
	IsImpactArea  bool             `json:"is_impact_area,omitempty"` // dedicated non-scoring "which area" question
	IsTemperament bool             `json:"is_temperament,omitempty"` // dedicated non-scoring temperament question
}

// AssessmentAnswer is a user's answer to one question: either a selected
// option id (single_choice) or a slider value (intensity_slider).
type AssessmentAnswer struct {
	QuestionID  string `json:"question_id"`
	OptionID    string `json:"option_id,omitempty"`
	SliderValue int    `json:"slider_value,omitempty"`
}

// AssessmentResult is the immutable outcome of one completed assessment.
// Re-assessment creates a new row; existing rows are never updated.
type AssessmentResult struct {
	ID               uint            `json:"id" gorm:"primarykey"`
	UserID           string          `json:"user_id" gorm:"index;not null"`
	PrimaryPattern   Pattern         `json:"primary_pattern" gorm:"type:varchar(50)"`   // empty when no diagnostic signal
	SecondaryPattern Pattern         `json:"secondary_pattern" gorm:"type:varchar(50)"` // empty when fewer than two patterns scored
	Confidence       int             `json:"confidence"`                                // 0-100
	PatternScores    map[Pattern]int `json:"pattern_scores" gorm:"serializer:json"`
	RawSeverity      int             `json:"raw_severity"` // sum of option base scores
	Temperament      Temperament     `json:"temperament,omitempty" gorm:"type:varchar(20)"`
	ImpactArea       ImpactArea      `json:"impact_area,omitempty" gorm:"type:varchar(50)"`
	Intensity        int             `json:"intensity"` // slider question value
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the AssessmentResult model.
func (AssessmentResult) TableName() string {
	return "assessment_results"
}
