package llm

import (
	"fmt"
	"strings"

	"github.com/dhabedank/brdgen/internal/core"
)

const brdSystemPrompt = `You are a senior Business Analyst. Produce an HTML snippet only, no markdown fences.

Include, in order: Executive Summary, Project Scope, Business Objectives (OBJ-1, OBJ-2, ...),
Stakeholders, Budget, Business Requirements grouped as EPICs, Assumptions, Constraints and Risks
(RISK-1, ...), Validations & Acceptance Criteria, Appendices.

Each EPIC is introduced by a heading "EPIC-NN: Title" followed by a paragraph "Requirements:" and a
bulleted list of "The system shall ..." statements. Expand brief inputs into detailed, testable items.`

const frdSystemPrompt = `You are a senior Business Analyst and Systems Architect converting a Business
Requirements Document into a Functional Requirements Document. Produce an HTML snippet only.

Include: an EPIC breakdown (keep the EPIC-NN identifiers from the BRD), user stories per EPIC in
"As a / I want / so that" form, numbered functional requirements (FR-001, FR-002, ...) each with
description, roles, acceptance criteria and traceability to its EPIC, field-level validations,
non-functional requirements, key data entities, and integration interfaces.`

// BRDPrompts builds the system and user prompts for a BRD.
func BRDPrompts(in core.Input) (system, user string) {
	in = in.Normalized()
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\nVersion: %d\n\n", in.Project, in.Version)
	section(&b, "Scope", in.Scope)
	section(&b, "Objectives", in.Objectives)
	section(&b, "Budget", in.Budget)
	section(&b, "Requirements", in.BriefRequirements)
	section(&b, "Assumptions", in.Assumptions)
	section(&b, "Constraints", in.Constraints)
	section(&b, "Validations", in.Validations)
	b.WriteString("If inputs are brief, expand into sensible BA-style detailed items. Output only HTML.")
	return brdSystemPrompt, b.String()
}

// FRDPrompts builds the system and user prompts for converting a BRD.
func FRDPrompts(in core.Input) (system, user string) {
	in = in.Normalized()
	var b strings.Builder
	fmt.Fprintf(&b, "Convert this BRD into a detailed FRD.\n\nProject: %s\nVersion: %d\n\n", in.Project, in.Version)
	section(&b, "BRD Content", in.RequirementsText())
	b.WriteString("Number every functional requirement FR-001, FR-002, ... Output only HTML.")
	return frdSystemPrompt, b.String()
}

// Prompts picks the prompt pair for a document type.
func Prompts(t core.DocType, in core.Input) (system, user string) {
	if t == core.DocFRD {
		return FRDPrompts(in)
	}
	return BRDPrompts(in)
}

func section(b *strings.Builder, name, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(b, "%s:\n%s\n\n", name, body)
}
