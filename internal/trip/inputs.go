package trip

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Form options, in display order.
var (
	TravelTypes = []string{"Leisure", "Business", "Adventure", "Cultural"}
	Interests   = []string{"History", "Food", "Nature", "Art", "Shopping", "Nightlife"}
	Seasons     = []string{"Summer", "Winter", "Spring", "Fall"}
	Budgets     = []string{"$500-$1000", "$1000-$2000", "$2000-$5000", "Luxury"}
)

const (
	MinDuration     = 1
	MaxDuration     = 14
	DefaultDuration = 7
)

// NoInterests stands in for an empty interest selection in prompts.
const NoInterests = "no specific interests"

// TripInputs are the traveller's preferences. Treat as a value; it is not
// modified after submission.
type TripInputs struct {
	TravelType string   `json:"travel_type"`
	Interests  []string `json:"interests"`
	Season     string   `json:"season"`
	Duration   int      `json:"duration"`
	Budget     string   `json:"budget"`
}

// DefaultInputs mirrors the form's initial state.
func DefaultInputs() TripInputs {
	return TripInputs{
		TravelType: TravelTypes[0],
		Season:     Seasons[0],
		Duration:   DefaultDuration,
		Budget:     Budgets[0],
	}
}

// FieldError reports one invalid input field.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every field against the form options. All offending
// fields are reported, joined.
func (in TripInputs) Validate() error {
	var errs []error
	if !slices.Contains(TravelTypes, in.TravelType) {
		errs = append(errs, &FieldError{Field: "travel_type", Value: in.TravelType, Reason: "must be one of " + strings.Join(TravelTypes, ", ")})
	}
	seen := make(map[string]struct{}, len(in.Interests))
	for _, i := range in.Interests {
		if !slices.Contains(Interests, i) {
			errs = append(errs, &FieldError{Field: "interests", Value: i, Reason: "must be one of " + strings.Join(Interests, ", ")})
			continue
		}
		if _, dup := seen[i]; dup {
			errs = append(errs, &FieldError{Field: "interests", Value: i, Reason: "selected twice"})
		}
		seen[i] = struct{}{}
	}
	if !slices.Contains(Seasons, in.Season) {
		errs = append(errs, &FieldError{Field: "season", Value: in.Season, Reason: "must be one of " + strings.Join(Seasons, ", ")})
	}
	if in.Duration < MinDuration || in.Duration > MaxDuration {
		errs = append(errs, &FieldError{Field: "duration", Value: strconv.Itoa(in.Duration), Reason: fmt.Sprintf("must be between %d and %d days", MinDuration, MaxDuration)})
	}
	if !slices.Contains(Budgets, in.Budget) {
		errs = append(errs, &FieldError{Field: "budget", Value: in.Budget, Reason: "must be one of " + strings.Join(Budgets, ", ")})
	}
	return errors.Join(errs...)
}

// Fields returns the template inputs for the trip tasks.
func (in TripInputs) Fields() map[string]string {
	interests := NoInterests
	if len(in.Interests) > 0 {
		interests = strings.Join(in.Interests, ", ")
	}
	return map[string]string{
		"travel_type": in.TravelType,
		"interests":   interests,
		"season":      in.Season,
		"duration":    strconv.Itoa(in.Duration),
		"budget":      in.Budget,
	}
}
