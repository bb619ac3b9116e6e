package models

import (
	"fmt"
	"strings"
)

type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// ParseComplexity accepts any casing and returns the canonical value.
func ParseComplexity(v string) (Complexity, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "low":
		return ComplexityLow, true
	case "medium":
		return ComplexityMedium, true
	case "high":
		return ComplexityHigh, true
	}
	return "", false
}

// AdvisoryResult is the studio consultant's structured advice for one project description.
type AdvisoryResult struct {
	Analysis           string     `json:"analysis"           bson:"analysis"`
	Complexity         Complexity `json:"complexity"         bson:"complexity"`
	SuggestedMaterials []string   `json:"suggestedMaterials" bson:"suggestedMaterials"`
}

// Normalized checks an advisory that did not come from the parser, such as one
// a client echoes back, and returns it with canonical complexity.
func (a AdvisoryResult) Normalized() (AdvisoryResult, error) {
	complexity, ok := ParseComplexity(string(a.Complexity))
	if !ok {
		return a, fmt.Errorf("unknown complexity %q", a.Complexity)
	}
	if a.SuggestedMaterials == nil {
		return a, fmt.Errorf("suggestedMaterials is required")
	}
	materials := make([]string, 0, len(a.SuggestedMaterials))
	for i, m := range a.SuggestedMaterials {
		if strings.TrimSpace(m) == "" {
			return a, fmt.Errorf("suggestedMaterials[%d] is empty", i)
		}
		materials = append(materials, m)
	}
	a.Complexity = complexity
	a.SuggestedMaterials = materials
	return a, nil
}
