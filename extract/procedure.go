package extract

import (
	"regexp"
	"strings"

	"github.com/wrenchwise/autosearch/models"
)

var (
	numberedStepRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)
	bulletStepRe   = regexp.MustCompile(`^\s*[•*]\s+(.+)$`)
	estimatedRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?(?:\s*-\s*\d+(?:\.\d+)?)?)\s*(hours?|hrs?|minutes?|mins?)`)
	toolsRe        = regexp.MustCompile(`(?i)tools?\s+(?:required|needed)\s*:\s*([^\n]+)`)
)

// Procedure extracts a step-by-step repair procedure from a document. A
// document yielding zero steps produces no entity.
func Procedure(doc models.RetrievedDocument, relevance models.RelevanceScore) *models.RepairProcedureCandidate {
	steps := extractSteps(doc.Body)
	if len(steps) == 0 {
		return nil
	}

	combined := doc.Title + " " + doc.Body
	return &models.RepairProcedureCandidate{
		Title:         strings.TrimSpace(doc.Title),
		Steps:         steps,
		Difficulty:    matchDifficulty(combined),
		EstimatedTime: matchEstimatedTime(combined),
		ToolsRequired: matchTools(combined),
		Confidence:    relevance.Overall,
		Source:        doc.OriginDomain,
	}
}

// extractSteps collects lines shaped like a numbered list ("1.", "2)") or
// a bullet list ("•", "*").
func extractSteps(body string) []string {
	var steps []string
	for _, line := range strings.Split(body, "\n") {
		if m := numberedStepRe.FindStringSubmatch(line); m != nil {
			steps = append(steps, strings.TrimSpace(m[1]))
			continue
		}
		if m := bulletStepRe.FindStringSubmatch(line); m != nil {
			steps = append(steps, strings.TrimSpace(m[1]))
		}
	}
	return steps
}

// matchDifficulty grades by priority; easy is the default grade, not
// merely "no signal found".
func matchDifficulty(text string) models.Difficulty {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "expert") || strings.Contains(lower, "professional"):
		return models.DifficultyExpert
	case strings.Contains(lower, "difficult") || strings.Contains(lower, "complex"):
		return models.DifficultyHard
	case strings.Contains(lower, "moderate") || strings.Contains(lower, "intermediate"):
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}

func matchEstimatedTime(text string) string {
	if m := estimatedRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[0])
	}
	return ""
}

// matchTools parses a "tools required/needed: ..." label, splitting on
// commas and semicolons. Absent the label, the set is empty.
func matchTools(text string) []string {
	m := toolsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var tools []string
	for _, tool := range strings.FieldsFunc(m[1], func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		tool = strings.TrimSpace(tool)
		if tool != "" {
			tools = append(tools, tool)
		}
	}
	return tools
}
