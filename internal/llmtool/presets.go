package llmtool

// PromptPreset holds reusable constraints and rules for structured prompts.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints/rules to a structured prompt spec.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	if len(presets) == 0 {
		return spec
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetStrictJSON enforces strict JSON-only output.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Return strict JSON only.",
			"No comments or trailing commas outside string values.",
		},
	}
}

// PresetMarkdownAnswer asks for the answer body as GitHub-flavored markdown.
func PresetMarkdownAnswer() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Write the answer field as GitHub-flavored markdown (headings, bullet lists, tables).",
			"Do not wrap the answer in code fences.",
		},
	}
}

// PresetResearchTools nudges the agent to ground claims with the web tools.
func PresetResearchTools() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Use web.search to find current sources and web.fetch to read the most relevant ones before answering.",
			"Prefer a few focused searches over many broad ones.",
		},
	}
}

// PresetGrounded restricts answers to the provided context.
func PresetGrounded() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Answer only from the provided context; say so plainly when it does not contain the answer.",
		},
	}
}
