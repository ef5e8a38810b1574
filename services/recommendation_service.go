package services

import (
	"errors"
	"fmt"
	"log"

	"mio/models"
	"mio/repository"
)

// Scoring weights for matching a catalog protocol against a classified
// result. A primary-pattern match outweighs a secondary one; temperament
// fit and reported intensity only nudge protocols that already match a
// pattern, they never select one on their own.
const (
	primaryMatchScore     = 3
	secondaryMatchScore   = 1
	temperamentMatchScore = 1
	highIntensityFloor    = 7
)

// protocolSuitsTemperament reports whether the protocol explicitly lists
// the user's temperament. An empty temperament list means the protocol
// suits everyone and earns no match bonus.
func protocolSuitsTemperament(protocol *models.Protocol, temperament models.Temperament) bool {
	if temperament == "" {
		return false
	}
	for _, t := range protocol.Temperaments {
		if t == temperament {
			return true
		}
	}
	return false
}

// RecommendationService defines the interface for the automated
// assignment rule: picking a catalog protocol for a classified user and
// placing it into the primary slot.
type RecommendationService interface {
	RecommendProtocol(result *models.AssessmentResult) (*models.Protocol, error)
	AutoAssign(userID string) (*models.Assignment, error)
}

type recommendationService struct {
	protocolRepo repository.ProtocolRepository
	resultRepo   repository.AssessmentResultRepository
	slots        SlotService
}

// NewRecommendationService creates a new instance of RecommendationService.
func NewRecommendationService(protocolRepo repository.ProtocolRepository, resultRepo repository.AssessmentResultRepository, slots SlotService) RecommendationService {
	return &recommendationService{
		protocolRepo: protocolRepo,
		resultRepo:   resultRepo,
		slots:        slots,
	}
}

// RecommendProtocol scores every catalog protocol against the result's
// primary and secondary patterns and returns the best match. A result with
// no primary pattern (zero-signal assessment) cannot drive a
// recommendation and returns an error the operator surfaces as "assign
// manually".
func (s *recommendationService) RecommendProtocol(result *models.AssessmentResult) (*models.Protocol, error) {
	if result == nil {
		return nil, errors.New("assessment result cannot be nil")
	}
	if result.PrimaryPattern == "" {
		log.Printf("INFO: [RecommendationService] Result %d has no primary pattern; no automatic recommendation.", result.ID)
		return nil, fmt.Errorf("assessment carries no pattern signal, assign a protocol manually: %w", ErrNoRecommendation)
	}

	protocols, err := s.protocolRepo.ListProtocols()
	if err != nil {
		log.Printf("ERROR: [RecommendationService] Failed to list protocols: %v", err)
		return nil, fmt.Errorf("failed to list protocols for recommendation: %w", err)
	}
	if len(protocols) == 0 {
		return nil, fmt.Errorf("protocol catalog is empty: %w", ErrNoRecommendation)
	}

	// Score each protocol; ties resolve to the earlier catalog entry so the
	// pick is deterministic.
	var best *models.Protocol
	bestScore := -1
	for _, protocol := range protocols {
		score := 0
		for _, target := range protocol.TargetPatterns {
			if target == result.PrimaryPattern {
				score += primaryMatchScore
			}
			if result.SecondaryPattern != "" && target == result.SecondaryPattern {
				score += secondaryMatchScore
			}
		}
		// Nudges only refine protocols that already match a pattern.
		if score > 0 {
			if protocolSuitsTemperament(protocol, result.Temperament) {
				score += temperamentMatchScore
			}
			// Users reporting high intensity lean toward the longer, deeper
			// protocol when scores otherwise agree.
			if result.Intensity >= highIntensityFloor && protocol.DurationDays > 14 {
				score++
			}
		}
		log.Printf("INFO: [RecommendationService] Protocol '%s' scored %d for result %d (primary '%s').",
			protocol.Slug, score, result.ID, result.PrimaryPattern)
		if score > bestScore {
			bestScore = score
			best = protocol
		}
	}

	if bestScore <= 0 {
		log.Printf("INFO: [RecommendationService] No protocol targets pattern '%s'; no automatic recommendation.", result.PrimaryPattern)
		return nil, fmt.Errorf("no catalog protocol targets pattern '%s': %w", result.PrimaryPattern, ErrNoRecommendation)
	}

	log.Printf("INFO: [RecommendationService] Recommending protocol '%s' (score %d) for result %d.", best.Slug, bestScore, result.ID)
	return best, nil
}

// AutoAssign looks up the user's latest assessment result, recommends a
// protocol, and assigns it to the primary slot. An occupied slot is
// reported as SlotOccupiedError rather than overwriting progress.
func (s *recommendationService) AutoAssign(userID string) (*models.Assignment, error) {
	if userID == "" {
		log.Printf("WARN: [RecommendationService] AutoAssign called with empty userID.")
		return nil, errors.New("userID cannot be empty")
	}

	result, err := s.resultRepo.GetLatestResultByUserID(userID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load latest assessment result for userID %s", userID)
		log.Printf("ERROR: [RecommendationService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if result == nil {
		log.Printf("INFO: [RecommendationService] UserID %s has no assessment result; cannot auto-assign.", userID)
		return nil, fmt.Errorf("no assessment result found, complete an assessment first: %w", ErrNoRecommendation)
	}

	protocol, err := s.RecommendProtocol(result)
	if err != nil {
		return nil, err
	}

	assignment, err := s.slots.Assign(userID, models.SlotPrimary, protocol.ID)
	if err != nil {
		var occupied *SlotOccupiedError
		if errors.As(err, &occupied) {
			log.Printf("INFO: [RecommendationService] Primary slot occupied for userID %s; leaving existing assignment in place.", userID)
		}
		return nil, err
	}

	log.Printf("INFO: [RecommendationService] Auto-assigned protocol '%s' to userID %s (assignment ID %d).",
		protocol.Slug, userID, assignment.ID)
	return assignment, nil
}
