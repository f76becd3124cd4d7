// Package recommend classifies a patient by age and visit reason and returns
// the desk's scripted treatment plan. It is a pure lookup: no state, no I/O.
// The advice text is front-desk guidance for the dentist's intake sheet, not
// a diagnosis.
package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned for ages below zero.
var ErrInvalidInput = errors.New("invalid input")

// AgeGroup is the age band a patient falls into.
type AgeGroup string

const (
	Child  AgeGroup = "child"  // 0–12
	Adult  AgeGroup = "adult"  // 13–59
	Senior AgeGroup = "senior" // 60+
)

// ReasonKey is the normalized visit reason.
type ReasonKey string

const (
	Checkup   ReasonKey = "checkup"
	Cleaning  ReasonKey = "cleaning"
	Braces    ReasonKey = "braces"
	Toothache ReasonKey = "toothache"
	Other     ReasonKey = "other"
)

// Plan is the result of a single recommendation request. It is never persisted.
type Plan struct {
	Age                  int       `json:"age"`
	AgeGroup             AgeGroup  `json:"age_group"`
	Reason               ReasonKey `json:"reason"`
	RecommendedTreatment string    `json:"recommended_treatment"`
	Notes                string    `json:"notes"`
}

// GroupForAge maps an integer age to its band.
func GroupForAge(age int) (AgeGroup, error) {
	switch {
	case age < 0:
		return "", fmt.Errorf("%w: age %d is negative", ErrInvalidInput, age)
	case age <= 12:
		return Child, nil
	case age <= 59:
		return Adult, nil
	default:
		return Senior, nil
	}
}

// reasonRules are evaluated in order; the first rule with a matching needle wins.
var reasonRules = []struct {
	key     ReasonKey
	needles []string
}{
	{Checkup, []string{"check"}},
	{Cleaning, []string{"clean", "prophy"}},
	{Braces, []string{"braces", "ortho"}},
	{Toothache, []string{"pain", "ache", "toothache"}},
}

// ClassifyReason normalizes free text into a ReasonKey using case-insensitive
// substring matching. Text matching no rule is Other.
func ClassifyReason(text string) ReasonKey {
	s := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range reasonRules {
		for _, n := range rule.needles {
			if strings.Contains(s, n) {
				return rule.key
			}
		}
	}
	return Other
}

// Recommend returns the plan for the given age and reason text.
func Recommend(age int, reason string) (Plan, error) {
	group, err := GroupForAge(age)
	if err != nil {
		return Plan{}, err
	}
	key := ClassifyReason(reason)
	a, ok := table[cell{group, key}]
	if !ok {
		// unreachable while the table is complete; TestTableComplete guards it
		return Plan{}, fmt.Errorf("no advice for %s/%s", group, key)
	}
	return Plan{
		Age:                  age,
		AgeGroup:             group,
		Reason:               key,
		RecommendedTreatment: a.treatment,
		Notes:                a.notes,
	}, nil
}
