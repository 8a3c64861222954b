package trip

import "tripplanner/internal/crew"

// TaskTemplate is a task's text before interpolation.
type TaskTemplate struct {
	Name           string
	Description    string
	ExpectedOutput string
}

// Render fills the description placeholders from fields. A missing field
// yields an error wrapping crew.ErrMissingInput.
func (t TaskTemplate) Render(fields map[string]string) (string, error) {
	return crew.Interpolate(t.Description, fields)
}

func (t TaskTemplate) task(agent *crew.Agent, context ...*crew.Task) *crew.Task {
	return &crew.Task{
		Name:           t.Name,
		Description:    t.Description,
		ExpectedOutput: t.ExpectedOutput,
		Agent:          agent,
		Context:        context,
	}
}

var CitySelectionTask = TaskTemplate{
	Name: "City Selection",
	Description: "Analyze the user's preferences to recommend the most suitable travel destinations by following these steps:\n" +
		"1. Identify cities that are ideal to visit in the given season.\n" +
		"2. Cross-reference those cities with the specified travel type and user interests.\n" +
		"3. Prioritize cities offering a good balance of cultural, recreational, and unique experiences.\n" +
		"- Travel Type: {travel_type}\n" +
		"- Interests: {interests}\n" +
		"- Season: {season}",
	ExpectedOutput: "Bulleted list of cities with a short rationale for each recommendation.",
}

var CityResearchTask = TaskTemplate{
	Name: "City Research",
	Description: "Conduct in-depth, structured research on the cities recommended in the City Selection step using the following format:\n" +
		"1. List top attractions and must-visit landmarks.\n" +
		"2. Highlight popular local dishes and cuisine specialties.\n" +
		"3. Summarize important cultural norms, etiquette, and local customs.\n" +
		"4. Recommend safe, well-located areas for accommodation.\n" +
		"5. Provide transportation tips including local travel hacks.\n" +
		"6. Include hidden gems or lesser-known experiences that locals enjoy.\n\n" +
		"Output: Organize findings into clear, titled sections with bullet points for each topic.",
	ExpectedOutput: "Organized sections with clear headings and bullet points covering each topic.",
}

var ItineraryCreationTask = TaskTemplate{
	Name: "Itinerary Creation",
	Description: "Plan a detailed {duration}-day itinerary for the recommended cities, ensuring it is well-paced and enjoyable.\n" +
		"1. Break each day into time slots.\n" +
		"2. Sequence attractions and activities logically to minimize travel time.\n" +
		"3. Include transportation options and estimated travel durations between locations.\n" +
		"4. Suggest meal options (breakfast, lunch, dinner) with location recommendations.\n" +
		"5. Ensure a good mix of sightseeing, leisure, dining, and hidden experiences.\n\n" +
		"Output: A structured, day-by-day table including time slots, activity descriptions, transport notes, and meal suggestions.",
	ExpectedOutput: "A clear, day-by-day table format itinerary with time slots, activities, transport details, and meal suggestions.",
}

var BudgetPlanningTask = TaskTemplate{
	Name: "Budget Planning",
	Description: "Based on the provided itinerary and selected budget category ({budget}), create a comprehensive budget plan covering:\n" +
		"1. Accommodation costs per night and total for the trip.\n" +
		"2. Transportation expenses (local and intercity as needed).\n" +
		"3. Attraction and activity fees based on itinerary items.\n" +
		"4. Meal budget estimates for breakfast, lunch, and dinner per day.\n" +
		"5. A recommended emergency fund allowance.\n" +
		"6. Optional extras or tips if budget allows.\n\n" +
		"Output: Present an itemized budget table with category-wise cost estimates and a total cost analysis.",
	ExpectedOutput: "An itemized budget table with detailed cost breakdown and total cost analysis.",
}

var ItineraryQATask = TaskTemplate{
	Name:           "Itinerary Q&A",
	Description:    "Based on the following travel itinerary:\n{itinerary}\n\nAnswer the question: {question}",
	ExpectedOutput: "A clear, specific and helpful answer based only on the provided itinerary.",
}

// TripTasks lists the planning pipeline's templates in execution order.
func TripTasks() []TaskTemplate {
	return []TaskTemplate{CitySelectionTask, CityResearchTask, ItineraryCreationTask, BudgetPlanningTask}
}
