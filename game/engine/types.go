package engine

// Stats holds the running counters accumulated by one game.
type Stats struct {
	TurnCount     int   `json:"turn_count"`
	RollCount     int   `json:"roll_count"`
	ClimbCount    int   `json:"climb_count"`
	SlideCount    int   `json:"slide_count"`
	ClimbDistance int   `json:"climb_distance"`
	SlideDistance int   `json:"slide_distance"`
	BiggestClimb  int   `json:"biggest_climb"`
	BiggestSlide  int   `json:"biggest_slide"`
	LongestTurn   []int `json:"longest_turn"`
	LuckyRolls    int   `json:"lucky_rolls"`
	UnluckyRolls  int   `json:"unlucky_rolls"`
}

// RollResult reports the outcome of a single resolved roll. Climb and slide
// distances cover every route hop taken while settling, so a chained slide
// reports the sum of all its segments.
type RollResult struct {
	DieValue      int `json:"die_value"`
	ClimbDistance int `json:"climb_distance"`
	SlideDistance int `json:"slide_distance"`
}

// TurnOutcome summarizes one completed turn: the die values rolled (in order)
// and the total distance climbed and slid across all of its rolls.
type TurnOutcome struct {
	Rolls []int `json:"rolls"`
	Climb int   `json:"climb"`
	Slide int   `json:"slide"`
}
