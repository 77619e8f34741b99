package scenario

// Scenario is a reusable improv premise template. Scenarios are loaded
// once from a catalog file and never mutated afterward.
type Scenario struct {
	ID     string `json:"id"`     // Unique ID within the catalog
	Prompt string `json:"prompt"` // The premise the player acts out
	Hint   string `json:"hint"`   // Acting guidance for the player
}
