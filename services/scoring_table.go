package services

import (
	"mio/models"
)

// Scoring table question IDs referenced elsewhere in the package.
const (
	QuestionIDTemperament = "q_temperament"
	QuestionIDImpactArea  = "q_impact_area"
	QuestionIDIntensity   = "q_intensity"
)

// getScoringTable defines the assessment questionnaire.
// Note: These are currently hardcoded. In a more dynamic system, they might
// come from a DB or config file.
//
// Option base scores feed the raw severity total only; pattern weights feed
// the per-pattern accumulators only. The impact-area question carries a base
// score of 0 on every option so it never pollutes pattern detection, and the
// intensity slider contributes no pattern signal at all.
func getScoringTable() []models.Question {
	return []models.Question{
		{
			ID: "q_past_hold", Order: 1,
			Text:         "When you think about moving forward in life, how often does something from your past pull you back?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_never", Text: "Rarely or never", BaseScore: 0},
				{ID: "opt_sometimes", Text: "Sometimes, in certain situations", BaseScore: 1,
					PatternWeights: map[models.Pattern]int{models.PatternPastPrison: 2}},
				{ID: "opt_often", Text: "Often, it shapes most of my decisions", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternPastPrison: 4, models.PatternIdentityCollision: 1}},
				{ID: "opt_always", Text: "Constantly, I feel defined by it", BaseScore: 3,
					PatternWeights: map[models.Pattern]int{models.PatternPastPrison: 6, models.PatternIdentityCollision: 2}},
			},
		},
		{
			ID: "q_success_response", Order: 2,
			Text:         "What tends to happen right after things start going well for you?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_build", Text: "I build on the momentum", BaseScore: 0},
				{ID: "opt_uneasy", Text: "I get uneasy and wait for something to go wrong", BaseScore: 1,
					PatternWeights: map[models.Pattern]int{models.PatternSuccessSabotage: 2, models.PatternPerformanceLiability: 1}},
				{ID: "opt_undermine", Text: "I find ways to undermine it without meaning to", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternSuccessSabotage: 5}},
				{ID: "opt_abandon", Text: "I abandon it before anyone can take it away", BaseScore: 3,
					PatternWeights: map[models.Pattern]int{models.PatternSuccessSabotage: 6, models.PatternPastPrison: 1}},
			},
		},
		{
			ID: "q_direction", Order: 3,
			Text:         "How clear are you on where your life is headed?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_clear", Text: "Very clear, I have a direction I trust", BaseScore: 0},
				{ID: "opt_fuzzy", Text: "Somewhat fuzzy, the direction keeps shifting", BaseScore: 1,
					PatternWeights: map[models.Pattern]int{models.PatternCompassCrisis: 3}},
				{ID: "opt_lost", Text: "I honestly don't know what I'm aiming at", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternCompassCrisis: 5, models.PatternMotivationCollapse: 1}},
				{ID: "opt_others", Text: "I've been following a direction that was never mine", BaseScore: 3,
					PatternWeights: map[models.Pattern]int{models.PatternCompassCrisis: 4, models.PatternIdentityCollision: 3}},
			},
		},
		{
			ID: "q_identity", Order: 4,
			Text:         "How well does the person you are day to day match the person you believe you really are?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_match", Text: "They're basically the same person", BaseScore: 0},
				{ID: "opt_roles", Text: "I play different people in different rooms", BaseScore: 1,
					PatternWeights: map[models.Pattern]int{models.PatternIdentityCollision: 3}},
				{ID: "opt_stranger", Text: "The day-to-day me feels like a stranger", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternIdentityCollision: 5, models.PatternCompassCrisis: 1}},
				{ID: "opt_war", Text: "They are actively at war with each other", BaseScore: 3,
					PatternWeights: map[models.Pattern]int{models.PatternIdentityCollision: 6, models.PatternPastPrison: 1}},
			},
		},
		{
			ID: "q_comparison", Order: 5,
			Text:         "When you see other people's progress, what happens inside?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_inspired", Text: "I feel inspired or neutral", BaseScore: 0},
				{ID: "opt_sting", Text: "A sting, then I move on", BaseScore: 1,
					PatternWeights: map[models.Pattern]int{models.PatternComparisonCatastrophe: 2}},
				{ID: "opt_spiral", Text: "I spiral into measuring my whole life against theirs", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternComparisonCatastrophe: 5}},
				{ID: "opt_paralyzed", Text: "It paralyzes me; why bother competing", BaseScore: 3,
					PatternWeights: map[models.Pattern]int{models.PatternComparisonCatastrophe: 5, models.PatternMotivationCollapse: 2}},
			},
		},
		{
			ID: "q_motivation", Order: 6,
			Text:         "How do your plans and commitments usually end?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_finish", Text: "I usually finish what I start", BaseScore: 0},
				{ID: "opt_fade", Text: "Strong start, slow fade", BaseScore: 1,
					PatternWeights: map[models.Pattern]int{models.PatternMotivationCollapse: 3}},
				{ID: "opt_collapse", Text: "The drive collapses all at once and I drop everything", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternMotivationCollapse: 5}},
				{ID: "opt_nostart", Text: "Lately I can't even get started", BaseScore: 3,
					PatternWeights: map[models.Pattern]int{models.PatternMotivationCollapse: 6, models.PatternComparisonCatastrophe: 1}},
			},
		},
		{
			ID: "q_pressure", Order: 7,
			Text:         "How do you perform when the stakes are highest?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_rise", Text: "I rise to the occasion", BaseScore: 0},
				{ID: "opt_tense", Text: "I tense up but get through it", BaseScore: 1,
					PatternWeights: map[models.Pattern]int{models.PatternPerformanceLiability: 2}},
				{ID: "opt_choke", Text: "I reliably underperform exactly when it matters", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternPerformanceLiability: 5}},
				{ID: "opt_avoid", Text: "I avoid high-stakes moments entirely", BaseScore: 3,
					PatternWeights: map[models.Pattern]int{models.PatternPerformanceLiability: 5, models.PatternSuccessSabotage: 2}},
			},
		},
		{
			ID: "q_self_talk", Order: 8,
			Text:         "Which voice is loudest in your head on a bad day?",
			QuestionType: models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{ID: "opt_coach", Text: "A steady one: tomorrow is another day", BaseScore: 0},
				{ID: "opt_historian", Text: "The historian: remember every time you failed before", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternPastPrison: 3, models.PatternPerformanceLiability: 1}},
				{ID: "opt_judge", Text: "The judge: everyone else manages, what's wrong with you", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternComparisonCatastrophe: 3, models.PatternIdentityCollision: 1}},
				{ID: "opt_saboteur", Text: "The saboteur: you didn't deserve it anyway", BaseScore: 2,
					PatternWeights: map[models.Pattern]int{models.PatternSuccessSabotage: 3, models.PatternMotivationCollapse: 1}},
			},
		},
		{
			// Non-scoring like the impact-area question below; the choice
			// feeds protocol recommendation, never pattern detection.
			ID: QuestionIDTemperament, Order: 9,
			Text:          "When life demands a change, how do you naturally move?",
			QuestionType:  models.QuestionTypeSingleChoice,
			IsTemperament: true,
			Options: []models.QuestionOption{
				{ID: string(models.TemperamentWarrior), Text: "Head-on: I act, push, and fight through", BaseScore: 0},
				{ID: string(models.TemperamentSage), Text: "Inward: I reflect, study, and make sense of it first", BaseScore: 0},
				{ID: string(models.TemperamentConnector), Text: "Together: I reach for people and talk it through", BaseScore: 0},
				{ID: string(models.TemperamentBuilder), Text: "Systematic: I design a structure and track my way out", BaseScore: 0},
			},
		},
		{
			// Every option scores 0 and carries no pattern weights, so the
			// area choice never moves the accumulators.
			ID: QuestionIDImpactArea, Order: 10,
			Text:         "Which area of your life is this affecting most right now?",
			QuestionType: models.QuestionTypeSingleChoice,
			IsImpactArea: true,
			Options: []models.QuestionOption{
				{ID: string(models.ImpactAreaCareer), Text: "Career and work", BaseScore: 0},
				{ID: string(models.ImpactAreaRelationships), Text: "Relationships", BaseScore: 0},
				{ID: string(models.ImpactAreaHealth), Text: "Health and energy", BaseScore: 0},
				{ID: string(models.ImpactAreaFinances), Text: "Money and finances", BaseScore: 0},
				{ID: string(models.ImpactAreaPurpose), Text: "Purpose and meaning", BaseScore: 0},
			},
		},
		{
			ID: QuestionIDIntensity, Order: 11,
			Text:         "How intensely is this showing up in your life right now? (1 = barely noticeable, 10 = overwhelming)",
			QuestionType: models.QuestionTypeIntensitySlider,
			SliderMin:    1,
			SliderMax:    10,
		},
	}
}
