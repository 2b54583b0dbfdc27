package classifier

import (
	"regexp"
	"strings"

	"github.com/agrovision/backend/internal/models"
)

// Result is the outcome of classifying one farmer message.
type Result struct {
	Intent     models.Intent
	Confidence models.Confidence
	Entities   map[string]string
	Matches    int
}

type Classifier interface {
	Classify(message string) Result
}

// intentPatterns maps each intent to its query patterns. The message is
// lowercased before matching, so patterns are lowercase-only.
var intentPatterns = map[models.Intent][]*regexp.Regexp{
	models.IntentHealthCheck: compileAll(
		`how.*crop.*doing`,
		`health.*farm`,
		`crop.*healthy`,
		`how.*field.*looking`,
		`status.*crop`,
		`check.*health`,
	),
	models.IntentRecommendation: compileAll(
		`what.*should.*do`,
		`recommend`,
		`suggest`,
		`advice`,
		`next.*step`,
		`how.*improve`,
		`what.*fertilizer`,
		`which.*pesticide`,
		`best.*practice`,
	),
	models.IntentProblemDiagnosis: compileAll(
		`problem`,
		`issue`,
		`wrong`,
		`yellowing`,
		`dying`,
		`disease`,
		`pest`,
		`damage`,
		`stress`,
		`plants.*turning`,
		`leaves.*yellow`,
		`crop.*sick`,
	),
	models.IntentGeneralInfo: compileAll(
		`what.*is`,
		`explain`,
		`tell.*about`,
		`information`,
		`learn.*about`,
	),
	models.IntentWeather: compileAll(
		`weather`,
		`rain`,
		`temperature`,
		`forecast`,
		`climate`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// RuleClassifier classifies messages by counting regex pattern hits per
// intent. It is a pure function of its input: no I/O, no state.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify returns exactly one intent plus a confidence level. The intent
// with the most matching patterns wins; equal counts are broken by the
// fixed priority order in models.Intents. Zero matches anywhere yields
// (general_info, low).
func (c *RuleClassifier) Classify(message string) Result {
	lower := strings.ToLower(message)

	best := models.IntentGeneralInfo
	bestMatches := 0
	for _, intent := range models.Intents {
		matches := 0
		for _, re := range intentPatterns[intent] {
			if re.MatchString(lower) {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			best = intent
		}
	}

	confidence := models.ConfidenceLow
	switch {
	case bestMatches >= 2:
		confidence = models.ConfidenceHigh
	case bestMatches == 1:
		confidence = models.ConfidenceMedium
	}

	return Result{
		Intent:     best,
		Confidence: confidence,
		Entities:   ExtractEntities(message),
		Matches:    bestMatches,
	}
}
