// Package crew runs a fixed, sequential list of LLM tasks, each bound to an
// agent persona. Task text is a template filled from kickoff inputs; each
// task sees the outputs of earlier tasks as context. Agents may call tools
// through the llmtool loop and may draft a plan before answering.
package crew
