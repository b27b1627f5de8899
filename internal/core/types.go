package core

import (
	"fmt"
	"strings"
)

// Domain is the business vertical a block of text is classified into.
// Values come from the rule tables; Generic is the implicit fallback.
type Domain string

// Generic is returned when no domain scores above the threshold.
const Generic Domain = "generic"

// Domains shipped with the embedded rule tables.
const (
	Marketing  Domain = "marketing"
	Financial  Domain = "financial"
	Healthcare Domain = "healthcare"
	Ecommerce  Domain = "ecommerce"
	Telecom    Domain = "telecom"
	Airline    Domain = "airline"
)

// Priority levels for requirements, epics and stories.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// MoSCoW maps the priority onto Must/Should/Could.
func (p Priority) MoSCoW() string {
	switch p {
	case PriorityHigh:
		return "Must"
	case PriorityMedium:
		return "Should"
	default:
		return "Could"
	}
}

// Requirement is one extracted requirement statement.
type Requirement struct {
	Text      string   `json:"text"`                 // Normalized statement
	EpicID    string   `json:"epic_id,omitempty"`    // Set when the source already grouped it
	EpicTitle string   `json:"epic_title,omitempty"` // Source EPIC title, structured mode only
	Priority  Priority `json:"priority"`
}

// Epic groups related requirements into one business capability.
type Epic struct {
	ID                     string   `json:"id"` // EPIC-NN
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	BusinessValue          string   `json:"business_value"`
	AcceptanceCriteria     []string `json:"acceptance_criteria"`
	FunctionalRequirements []string `json:"functional_requirements"`
	Priority               Priority `json:"priority"`
}

// UserStory decomposes part of an Epic into an "As a / I want / so that" item.
type UserStory struct {
	ID                 string   `json:"id"` // US-EE-SS
	EpicID             string   `json:"epic_id"`
	Title              string   `json:"title"`
	Action             string   `json:"action"` // Story group label
	Persona            string   `json:"persona"`
	Want               string   `json:"want"`
	SoThat             string   `json:"so_that"`
	Requirements       []string `json:"requirements"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	ValidationCriteria []string `json:"validation_criteria"`
	Priority           Priority `json:"priority"`
	MoSCoW             string   `json:"moscow"`
	StoryPoints        int      `json:"story_points"` // 3, 5 or 8
}

// DocType selects the rendered document.
type DocType string

const (
	DocBRD DocType = "BRD"
	DocFRD DocType = "FRD"
)

// ParseDocType accepts brd/frd in any case.
func ParseDocType(s string) (DocType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "BRD":
		return DocBRD, nil
	case "FRD":
		return DocFRD, nil
	}
	return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown document type %q (want brd or frd)", s)}
}

// Document is a rendered requirements document.
type Document struct {
	Project string  `json:"project"`
	Version int     `json:"version"`
	Type    DocType `json:"type"`
	Domain  Domain  `json:"domain"`
	HTML    string  `json:"html"`
}

// Input is the set of free-text fields a document is generated from.
type Input struct {
	Project           string `yaml:"project" json:"project"`
	Version           int    `yaml:"version" json:"version"`
	Scope             string `yaml:"scope" json:"scope"`
	Objectives        string `yaml:"objectives" json:"objectives"`
	Budget            string `yaml:"budget" json:"budget"`
	BriefRequirements string `yaml:"requirements" json:"requirements"`
	Assumptions       string `yaml:"assumptions" json:"assumptions"`
	Constraints       string `yaml:"constraints" json:"constraints"`
	Validations       string `yaml:"validations" json:"validations"` // Display override only
	BRDText           string `yaml:"brd" json:"brd,omitempty"`      // Source BRD for FRD conversion
}

// DefaultProject names documents whose input has no project.
const DefaultProject = "Untitled Project"

// Normalized returns a copy with defaults applied.
func (in Input) Normalized() Input {
	in.Project = strings.TrimSpace(in.Project)
	if in.Project == "" {
		in.Project = DefaultProject
	}
	if in.Version <= 0 {
		in.Version = 1
	}
	return in
}

// ClassificationText is the free text the domain classifier scores. A BRD
// being converted contributes only its extracted requirements.
func (in Input) ClassificationText() string {
	return strings.Join([]string{in.Scope, in.Objectives, in.BriefRequirements}, " ")
}

// RequirementsText is the text the extractor reads: the BRD when converting,
// otherwise the brief requirements.
func (in Input) RequirementsText() string {
	if strings.TrimSpace(in.BRDText) != "" {
		return in.BRDText
	}
	return in.BriefRequirements
}

// Validate checks the fields an engine run cannot repair.
func (in *Input) Validate() error {
	if in.Version < 0 {
		return &ValidationError{Field: "version", Message: "must not be negative"}
	}
	if len(in.Project) > 200 {
		return &ValidationError{Field: "project", Message: "longer than 200 characters"}
	}
	return nil
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}
