package shared

import (
	"fmt"
	"strings"

	dErrors "taxcalc/pkg/domain-errors"
)

// DefaultState is used when a taxpayer does not name a state of residence.
const DefaultState = "FCT"

// States lists the 36 states and the Federal Capital Territory accepted as a
// state of residence by the remote service.
var States = []string{
	"Abia", "Adamawa", "Akwa Ibom", "Anambra", "Bauchi", "Bayelsa", "Benue",
	"Borno", "Cross River", "Delta", "Ebonyi", "Edo", "Ekiti", "Enugu", "FCT",
	"Gombe", "Imo", "Jigawa", "Kaduna", "Kano", "Katsina", "Kebbi", "Kogi",
	"Kwara", "Lagos", "Nasarawa", "Niger", "Ogun", "Ondo", "Osun", "Oyo",
	"Plateau", "Rivers", "Sokoto", "Taraba", "Yobe", "Zamfara",
}

var stateIndex = func() map[string]string {
	m := make(map[string]string, len(States))
	for _, s := range States {
		m[strings.ToLower(s)] = s
	}
	return m
}()

// ParseState normalises a state name case-insensitively. Empty input maps to
// DefaultState; unknown names are a validation error.
func ParseState(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultState, nil
	}
	if canonical, ok := stateIndex[strings.ToLower(trimmed)]; ok {
		return canonical, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown state of residence %q", trimmed))
}
