package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/internal/domain/recommendation"
)

const systemPrompt = `You are an expert career counselor who recommends career pathways to students and early-career professionals.

Your goal is to:
- Read the learner profile: skills with levels, education, experience, assessment scores, interests and career goals.
- Recommend between 3 and 5 career pathways that fit the profile.
- Prefer pathways from the catalog when one fits, and set pathwayId to its id.
- Explain each recommendation with reasoning grounded only in the profile.

Return your result as a single JSON object in this format:

{
  "recommendations": [
    {
      "title": string,
      "reasoning": string,
      "summary": string,
      "matchScore": number,
      "keySkills": [string],
      "nextSteps": [string],
      "pathwayId": string
    }
  ]
}

matchScore is an integer from 0 to 100.
Do not make up experience the profile does not mention.
Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON.`

// BuildPrompt renders the user message for a profile.
func BuildPrompt(p *recommendation.ProfileInput) (string, error) {
	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cannot encode profile: %w", err)
	}

	var b strings.Builder
	b.WriteString("Pathway catalog:\n")
	for _, pw := range pathway.Catalog() {
		fmt.Fprintf(&b, "- %s: %s\n", pw.ID, pw.Name)
	}
	b.WriteString("\nLearner profile:\n")
	b.Write(profileJSON)
	b.WriteString("\n")
	return b.String(), nil
}
