package trip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultInputsAreValid(t *testing.T) {
	in := DefaultInputs()
	require.NoError(t, in.Validate())
	assert.Equal(t, 7, in.Duration)
}

func TestValidate_ReportsEveryField(t *testing.T) {
	in := TripInputs{
		TravelType: "Cruise",
		Interests:  []string{"Food", "Food", "Gaming"},
		Season:     "Monsoon",
		Duration:   15,
		Budget:     "cheap",
	}
	err := in.Validate()
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	for _, want := range []string{"travel_type", "interests", `"Gaming"`, "selected twice", "season", "duration", "between 1 and 14", "budget"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_DurationBounds(t *testing.T) {
	in := DefaultInputs()
	for _, d := range []int{MinDuration, MaxDuration} {
		in.Duration = d
		assert.NoError(t, in.Validate(), "duration %d", d)
	}
	for _, d := range []int{0, -3, MaxDuration + 1} {
		in.Duration = d
		assert.Error(t, in.Validate(), "duration %d", d)
	}
}

func TestFields(t *testing.T) {
	in := TripInputs{TravelType: "Cultural", Interests: []string{"History", "Art"}, Season: "Fall", Duration: 5, Budget: "Luxury"}
	assert.Equal(t, map[string]string{
		"travel_type": "Cultural",
		"interests":   "History, Art",
		"season":      "Fall",
		"duration":    "5",
		"budget":      "Luxury",
	}, in.Fields())

	in.Interests = nil
	assert.Equal(t, NoInterests, in.Fields()["interests"])
}
