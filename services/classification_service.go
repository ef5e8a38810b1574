package services

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"mio/models"
	"mio/repository"
)

// ClassificationService defines the interface for scoring completed
// assessments into pattern classifications.
type ClassificationService interface {
	Questions() []models.Question
	Classify(answers []models.AssessmentAnswer) (*models.AssessmentResult, error)
	ClassifyAndStore(userID string, answers []models.AssessmentAnswer) (*models.AssessmentResult, error)
	GetLatestResult(userID string) (*models.AssessmentResult, error)
}

// classificationService implements the ClassificationService interface.
type classificationService struct {
	resultRepo    repository.AssessmentResultRepository
	questions     []models.Question           // ordered scoring table
	questionsByID map[string]*models.Question // quick lookup by ID
}

// NewClassificationService creates a new instance of ClassificationService.
func NewClassificationService(resultRepo repository.AssessmentResultRepository) ClassificationService {
	definedQuestions := getScoringTable()

	// Ensure questions are sorted by their Order field.
	sort.Slice(definedQuestions, func(i, j int) bool {
		return definedQuestions[i].Order < definedQuestions[j].Order
	})

	questionsMap := make(map[string]*models.Question)
	for i := range definedQuestions {
		questionsMap[definedQuestions[i].ID] = &definedQuestions[i]
	}

	return &classificationService{
		resultRepo:    resultRepo,
		questions:     definedQuestions,
		questionsByID: questionsMap,
	}
}

// Questions returns the ordered scoring table for the presentation layer.
func (s *classificationService) Questions() []models.Question {
	return s.questions
}

// Classify scores a completed answer set against the scoring table. It is a
// pure function: calling it twice with identical answers yields identical
// results, and it performs no persistence.
//
// A zero total pattern weight is a valid outcome (confidence 0, no primary
// pattern), not an error.
func (s *classificationService) Classify(answers []models.AssessmentAnswer) (*models.AssessmentResult, error) {
	answersByQuestion := make(map[string]models.AssessmentAnswer, len(answers))
	for _, ans := range answers {
		if _, exists := s.questionsByID[ans.QuestionID]; !exists {
			log.Printf("WARN: [ClassificationService] Answer references unknown questionID '%s'.", ans.QuestionID)
			return nil, fmt.Errorf("unknown question '%s': %w", ans.QuestionID, ErrIncompleteAnswerSet)
		}
		if _, dup := answersByQuestion[ans.QuestionID]; dup {
			log.Printf("WARN: [ClassificationService] Duplicate answer for questionID '%s'.", ans.QuestionID)
			return nil, fmt.Errorf("duplicate answer for question '%s': %w", ans.QuestionID, ErrIncompleteAnswerSet)
		}
		answersByQuestion[ans.QuestionID] = ans
	}
	for _, q := range s.questions {
		if _, answered := answersByQuestion[q.ID]; !answered {
			log.Printf("WARN: [ClassificationService] Question '%s' is unanswered.", q.ID)
			return nil, fmt.Errorf("question '%s' is unanswered: %w", q.ID, ErrIncompleteAnswerSet)
		}
	}

	scores := make(map[models.Pattern]int)
	rawSeverity := 0
	intensity := 0
	var temperament models.Temperament
	var impactArea models.ImpactArea

	// evidence collects the chosen options of the scoring questions that
	// carried pattern weights, in answer order. It backs the deterministic
	// tie-break below (most-recent-evidence wins); accumulator map order is
	// never relied on.
	var evidence []map[models.Pattern]int

	for _, q := range s.questions {
		ans := answersByQuestion[q.ID]

		if q.QuestionType == models.QuestionTypeIntensitySlider {
			if ans.SliderValue < q.SliderMin || ans.SliderValue > q.SliderMax {
				return nil, fmt.Errorf("slider value %d outside range %d-%d for question '%s': %w",
					ans.SliderValue, q.SliderMin, q.SliderMax, q.ID, ErrIncompleteAnswerSet)
			}
			intensity = ans.SliderValue
			continue
		}

		opt := findOption(q, ans.OptionID)
		if opt == nil {
			log.Printf("WARN: [ClassificationService] Answer for questionID '%s' references unknown optionID '%s'.", q.ID, ans.OptionID)
			return nil, fmt.Errorf("unknown option '%s' for question '%s': %w", ans.OptionID, q.ID, ErrIncompleteAnswerSet)
		}

		if q.IsTemperament {
			temperament = models.Temperament(opt.ID)
			continue
		}
		if q.IsImpactArea {
			impactArea = models.ImpactArea(opt.ID)
			continue
		}

		rawSeverity += opt.BaseScore
		for pattern, weight := range opt.PatternWeights {
			scores[pattern] += weight
		}
		if len(opt.PatternWeights) > 0 {
			evidence = append(evidence, opt.PatternWeights)
		}
	}

	total := 0
	for _, v := range scores {
		total += v
	}

	result := &models.AssessmentResult{
		PatternScores: scores,
		RawSeverity:   rawSeverity,
		Temperament:   temperament,
		ImpactArea:    impactArea,
		Intensity:     intensity,
	}

	if total == 0 {
		// Only non-diagnostic options were chosen throughout. Expected
		// outcome: no pattern, zero confidence.
		log.Printf("INFO: [ClassificationService] Answer set carries no pattern signal; returning unclassified result.")
		return result, nil
	}

	primary := pickTopPattern(scores, evidence, "")
	secondary := pickTopPattern(scores, evidence, primary)

	confidence := (100*scores[primary] + total/2) / total
	if confidence < 0 {
		confidence = 0
	} else if confidence > 100 {
		confidence = 100
	}

	result.PrimaryPattern = primary
	result.SecondaryPattern = secondary
	result.Confidence = confidence
	return result, nil
}

// ClassifyAndStore classifies the answer set and persists the result as a
// new immutable row owned by userID. Re-assessment creates a new result; it
// never mutates an old one.
func (s *classificationService) ClassifyAndStore(userID string, answers []models.AssessmentAnswer) (*models.AssessmentResult, error) {
	if userID == "" {
		log.Printf("WARN: [ClassificationService] ClassifyAndStore called with empty userID.")
		return nil, errors.New("userID cannot be empty")
	}

	result, err := s.Classify(answers)
	if err != nil {
		return nil, err
	}

	result.UserID = userID
	if err := s.resultRepo.CreateResult(result); err != nil {
		errMsg := fmt.Sprintf("failed to store assessment result for userID %s", userID)
		log.Printf("ERROR: [ClassificationService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	log.Printf("INFO: [ClassificationService] Stored result ID %d for userID '%s': primary='%s', confidence=%d, impact='%s'.",
		result.ID, userID, result.PrimaryPattern, result.Confidence, result.ImpactArea)
	return result, nil
}

// GetLatestResult retrieves the user's most recent assessment result.
// Returns (nil, nil) when the user has never completed an assessment.
func (s *classificationService) GetLatestResult(userID string) (*models.AssessmentResult, error) {
	if userID == "" {
		log.Printf("WARN: [ClassificationService] GetLatestResult called with empty userID.")
		return nil, errors.New("userID cannot be empty")
	}
	result, err := s.resultRepo.GetLatestResultByUserID(userID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to get latest assessment result for userID %s", userID)
		log.Printf("ERROR: [ClassificationService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return result, nil
}

// findOption looks up an option of q by id. Returns nil when absent.
func findOption(q models.Question, optionID string) *models.QuestionOption {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}

// pickTopPattern returns the highest-scoring pattern, excluding exclude
// (pass "" for the primary pick). Ties are broken by most-recent evidence:
// among the tied patterns, the one carrying the highest indicator weight in
// the latest answered scoring question wins, walking further back through
// the answers while the tie persists. The final fallback is lexicographic
// order, so the pick is deterministic regardless of map iteration order.
func pickTopPattern(scores map[models.Pattern]int, evidence []map[models.Pattern]int, exclude models.Pattern) models.Pattern {
	best := -1
	var tied []models.Pattern
	for pattern, score := range scores {
		if pattern == exclude {
			continue
		}
		if score > best {
			best = score
			tied = []models.Pattern{pattern}
		} else if score == best {
			tied = append(tied, pattern)
		}
	}
	if len(tied) == 0 {
		return ""
	}

	for i := len(evidence) - 1; i >= 0 && len(tied) > 1; i-- {
		weights := evidence[i]
		bestWeight := -1
		var narrowed []models.Pattern
		for _, pattern := range tied {
			w, present := weights[pattern]
			if !present {
				continue
			}
			if w > bestWeight {
				bestWeight = w
				narrowed = []models.Pattern{pattern}
			} else if w == bestWeight {
				narrowed = append(narrowed, pattern)
			}
		}
		if len(narrowed) > 0 {
			tied = narrowed
		}
	}

	sort.Slice(tied, func(i, j int) bool { return tied[i] < tied[j] })
	return tied[0]
}
