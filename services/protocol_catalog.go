package services

import (
	"errors"
	"fmt"
	"log"

	"mio/models"
	"mio/repository"
)

// ProtocolCatalogService defines the interface for reading and seeding the
// protocol catalog.
type ProtocolCatalogService interface {
	GetProtocol(protocolID uint) (*models.Protocol, error)
	ListProtocols() ([]*models.Protocol, error)
	SeedDefaults() error
}

type protocolCatalogService struct {
	protocolRepo repository.ProtocolRepository
}

// NewProtocolCatalogService creates a new instance of ProtocolCatalogService.
func NewProtocolCatalogService(protocolRepo repository.ProtocolRepository) ProtocolCatalogService {
	return &protocolCatalogService{protocolRepo: protocolRepo}
}

// GetProtocol retrieves a catalog protocol with its tasks.
func (s *protocolCatalogService) GetProtocol(protocolID uint) (*models.Protocol, error) {
	protocol, err := s.protocolRepo.GetProtocolByID(protocolID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to get protocol %d", protocolID)
		log.Printf("ERROR: [ProtocolCatalogService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if protocol == nil {
		return nil, fmt.Errorf("protocol with ID %d not found", protocolID)
	}
	return protocol, nil
}

// ListProtocols returns the full catalog.
func (s *protocolCatalogService) ListProtocols() ([]*models.Protocol, error) {
	protocols, err := s.protocolRepo.ListProtocols()
	if err != nil {
		log.Printf("ERROR: [ProtocolCatalogService] Failed to list protocols: %v", err)
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}
	return protocols, nil
}

// SeedDefaults inserts the built-in protocols when the catalog is empty.
// Safe to call on every startup.
func (s *protocolCatalogService) SeedDefaults() error {
	count, err := s.protocolRepo.CountProtocols()
	if err != nil {
		return fmt.Errorf("failed to check protocol catalog: %w", err)
	}
	if count > 0 {
		log.Printf("INFO: [ProtocolCatalogService] Catalog already has %d protocols, skipping seed.", count)
		return nil
	}

	for _, protocol := range getDefaultProtocols() {
		if protocol.DurationDays%7 != 0 {
			// Protocols run in whole weeks; a malformed definition must not
			// reach the catalog.
			return errors.New("protocol '" + protocol.Slug + "' duration is not a multiple of 7")
		}
		if err := s.protocolRepo.CreateProtocol(protocol); err != nil {
			return fmt.Errorf("failed to seed protocol '%s': %w", protocol.Slug, err)
		}
	}
	log.Printf("INFO: [ProtocolCatalogService] Seeded default protocol catalog.")
	return nil
}

// weekPlan is the recurring daily practice set for one week of a protocol.
// The content team writes protocols as weekly themes with repeating
// morning/throughout/evening practices; expandWeeks unrolls them into
// per-day catalog tasks.
type weekPlan struct {
	Theme      string
	Morning    taskSpec
	Throughout taskSpec
	Evening    taskSpec
}

type taskSpec struct {
	Type             models.TaskType
	Title            string
	Instructions     string
	EstimatedMinutes int
	ResourceURL      string
}

func expandWeeks(weeks []weekPlan) []models.ProtocolTask {
	var tasks []models.ProtocolTask
	for w, plan := range weeks {
		specs := []struct {
			timeOfDay models.TimeOfDay
			spec      taskSpec
		}{
			{models.TimeOfDayMorning, plan.Morning},
			{models.TimeOfDayThroughout, plan.Throughout},
			{models.TimeOfDayEvening, plan.Evening},
		}
		for day := 1; day <= 7; day++ {
			for order, entry := range specs {
				tasks = append(tasks, models.ProtocolTask{
					Week:             w + 1,
					Day:              day,
					TimeOfDay:        entry.timeOfDay,
					Type:             entry.spec.Type,
					Title:            entry.spec.Title,
					Instructions:     entry.spec.Instructions,
					EstimatedMinutes: entry.spec.EstimatedMinutes,
					ResourceURL:      entry.spec.ResourceURL,
					Order:            order,
				})
			}
		}
	}
	return tasks
}

// getDefaultProtocols defines the built-in catalog.
// Note: These are currently hardcoded. In a more dynamic system, they might
// come from a DB or config file.
func getDefaultProtocols() []*models.Protocol {
	dailyDeductible := &models.Protocol{
		Slug:  "daily-deductible",
		Title: "Daily Deductible",
		Theme: "Small daily payments against old patterns",
		TargetPatterns: []models.Pattern{
			models.PatternPastPrison,
			models.PatternCompassCrisis,
			models.PatternSuccessSabotage,
		},
		DurationDays: 14,
		Tasks: expandWeeks([]weekPlan{
			{
				Theme: "Noticing the pattern",
				Morning: taskSpec{
					Type:             models.TaskTypeReflection,
					Title:            "Morning pattern check-in",
					Instructions:     "Before looking at your phone, write one sentence about which old story is loudest this morning.",
					EstimatedMinutes: 5,
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "One deliberate interruption",
					Instructions:     "Catch the pattern once today and do the opposite of its instruction, however small.",
					EstimatedMinutes: 10,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeWorksheet,
					Title:            "Evening deductible log",
					Instructions:     "Log the moment you interrupted the pattern and what it cost you to do so.",
					EstimatedMinutes: 5,
				},
			},
			{
				Theme: "Paying forward",
				Morning: taskSpec{
					Type:             models.TaskTypeReading,
					Title:            "Read today's reframe",
					Instructions:     "Read the short reframe for day two-week practices and mark one line that lands.",
					EstimatedMinutes: 10,
					ResourceURL:      "https://content.mio.app/daily-deductible/week-2",
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "Stack a second interruption",
					Instructions:     "Interrupt the pattern twice today; note whether the second one came easier.",
					EstimatedMinutes: 10,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeVoiceRecording,
					Title:            "Two-minute voice note",
					Instructions:     "Record a two-minute note to your day-one self about what changed this week.",
					EstimatedMinutes: 5,
				},
			},
		}),
	}

	neuralRewiring := &models.Protocol{
		Slug:  "neural-rewiring",
		Title: "Neural Rewiring",
		Theme: "Six weeks of pattern-specific rewiring practice",
		TargetPatterns: []models.Pattern{
			models.PatternComparisonCatastrophe,
			models.PatternMotivationCollapse,
			models.PatternPerformanceLiability,
			models.PatternIdentityCollision,
		},
		DurationDays: 42,
		Tasks: expandWeeks([]weekPlan{
			{
				Theme: "Baseline",
				Morning: taskSpec{
					Type:             models.TaskTypeReflection,
					Title:            "Baseline morning scan",
					Instructions:     "Rate your pull toward the pattern on a 1-10 scale and note the first trigger you expect today.",
					EstimatedMinutes: 5,
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "Trigger inventory",
					Instructions:     "Each time the pattern fires, add the trigger to your inventory without judging it.",
					EstimatedMinutes: 10,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeWorksheet,
					Title:            "Baseline evening review",
					Instructions:     "Transfer today's triggers to the baseline worksheet.",
					EstimatedMinutes: 10,
					ResourceURL:      "https://content.mio.app/neural-rewiring/baseline-worksheet",
				},
			},
			{
				Theme: "Interruption",
				Morning: taskSpec{
					Type:             models.TaskTypeVideo,
					Title:            "Interruption technique video",
					Instructions:     "Watch the week's technique video before your first focus block.",
					EstimatedMinutes: 10,
					ResourceURL:      "https://content.mio.app/neural-rewiring/week-2-technique",
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "Personal best tracking",
					Instructions:     "Track one metric against yesterday's you, never against anyone else.",
					EstimatedMinutes: 10,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeReflection,
					Title:            "Interruption count",
					Instructions:     "Count today's successful interruptions and write what made the hardest one possible.",
					EstimatedMinutes: 5,
				},
			},
			{
				Theme: "Replacement",
				Morning: taskSpec{
					Type:             models.TaskTypeReflection,
					Title:            "Replacement rehearsal",
					Instructions:     "Rehearse the replacement response for your top trigger before it happens.",
					EstimatedMinutes: 5,
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "Run the replacement",
					Instructions:     "When the top trigger fires, run the rehearsed replacement instead.",
					EstimatedMinutes: 15,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeWorksheet,
					Title:            "Replacement scorecard",
					Instructions:     "Score each replacement attempt: ran it, partially ran it, or reverted.",
					EstimatedMinutes: 10,
				},
			},
			{
				Theme: "Consolidation",
				Morning: taskSpec{
					Type:             models.TaskTypeReading,
					Title:            "Consolidation reading",
					Instructions:     "Read the consolidation chapter section for the day.",
					EstimatedMinutes: 15,
					ResourceURL:      "https://content.mio.app/neural-rewiring/consolidation",
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "Blinder walk practice",
					Instructions:     "Take a twenty-minute walk with no inputs; when comparison thoughts arrive, name them and keep walking.",
					EstimatedMinutes: 20,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeReflection,
					Title:            "Consolidation journal",
					Instructions:     "Write which replacement is starting to feel automatic.",
					EstimatedMinutes: 10,
				},
			},
			{
				Theme: "Stress testing",
				Morning: taskSpec{
					Type:             models.TaskTypeReflection,
					Title:            "Pick today's stress test",
					Instructions:     "Choose one situation you'd normally avoid and commit to entering it today.",
					EstimatedMinutes: 5,
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "Enter the stress test",
					Instructions:     "Enter the chosen situation and run your replacement response under real pressure.",
					EstimatedMinutes: 20,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeVoiceRecording,
					Title:            "Stress test debrief",
					Instructions:     "Record a short debrief: what held, what cracked, what you'd adjust.",
					EstimatedMinutes: 5,
				},
			},
			{
				Theme: "Integration",
				Morning: taskSpec{
					Type:             models.TaskTypeReflection,
					Title:            "Integration check-in",
					Instructions:     "Note where the new response showed up yesterday without you planning it.",
					EstimatedMinutes: 5,
				},
				Throughout: taskSpec{
					Type:             models.TaskTypeAction,
					Title:            "Teach it once",
					Instructions:     "Explain your replacement technique to one other person in your own words.",
					EstimatedMinutes: 15,
				},
				Evening: taskSpec{
					Type:             models.TaskTypeWorksheet,
					Title:            "Six-week comparison",
					Instructions:     "Compare today's trigger inventory against week one's baseline worksheet.",
					EstimatedMinutes: 15,
					ResourceURL:      "https://content.mio.app/neural-rewiring/integration-worksheet",
				},
			},
		}),
	}

	return []*models.Protocol{dailyDeductible, neuralRewiring}
}
