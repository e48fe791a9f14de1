package vision

import (
	"fmt"
	"strings"
)

// analysisResponseShape is the JSON contract the model is asked to fill.
// Keys must match the models.AnalysisResult tags so the reply can be
// decoded directly.
const analysisResponseShape = `{
  "species": {
    "name": "display name",
    "scientific_name": "Latin binomial",
    "confidence": 0.95,
    "is_native": true
  },
  "health_assessment": {
    "score": 85,
    "issues": ["list of observed problems"],
    "recommendations": "care advice for this species",
    "urgency": "low/medium/high"
  },
  "physical_attributes": {
    "height_estimate_m": 0,
    "age_estimate_years": 0,
    "canopy_width_m": 0,
    "trunk_diameter_cm": 0
  },
  "cultural_info": {
    "common_in_regions": ["regions where this species is common"],
    "traditional_uses": ["traditional uses"],
    "cultural_significance": "low/medium/high"
  }
}`

// buildAnalysisPrompt assembles the vision prompt, optionally enriched
// with knowledge-base notes so the model can lean on local expertise.
func buildAnalysisPrompt(kb Resolver, location string, enrich bool) string {
	var b strings.Builder
	b.WriteString("You are an expert on perennial trees of Thailand and Southeast Asia.\n\n")

	if enrich && kb != nil {
		b.WriteString("## Species reference notes:\n")
		records := kb.All()
		if len(records) == 0 {
			b.WriteString("(no species notes available)\n")
		}
		for _, rec := range records {
			notes := rec.Notes
			if len(notes) > 100 {
				notes = notes[:100] + "..."
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", rec.Name, rec.ScientificName, notes)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Instructions:\n")
	b.WriteString("1. Identify the tree species in the image (display name and scientific name).\n")
	b.WriteString("2. Assess its health from 0 to 100 and list visible issues.\n")
	b.WriteString("3. Give species-specific care recommendations.\n")
	b.WriteString("4. Estimate its physical attributes.\n\n")

	b.WriteString("## Response format (JSON only):\n")
	b.WriteString(analysisResponseShape)
	b.WriteString("\n\n")

	if location != "" {
		fmt.Fprintf(&b, "## Additional context:\nLocation: %s\n\n", location)
	}
	if enrich {
		b.WriteString("Note: when the tree matches a species from the reference notes above, ground your answer in them.\n")
	}
	return b.String()
}

// buildChatPrompt assembles the tree-care chat prompt.
func buildChatPrompt(kb Resolver, message, treeContext string) string {
	var b strings.Builder
	b.WriteString("You are a friendly, knowledgeable tree care expert specializing in tropical trees.\n\n")
	if treeContext != "" {
		fmt.Fprintf(&b, "Tree context: %s\n", treeContext)
	}
	if kb != nil {
		if native := kb.Native(); len(native) > 0 {
			if len(native) > 3 {
				native = native[:3]
			}
			fmt.Fprintf(&b, "Native species on file: %s\n", strings.Join(native, ", "))
		}
	}
	fmt.Fprintf(&b, "\nUser question: %s\n\n", message)
	b.WriteString("Provide a helpful, detailed answer with practical advice. " +
		"Prefer sustainable and traditional methods when applicable.")
	return b.String()
}
