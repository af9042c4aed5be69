package gemini

// AnalysisResult is the structured output of one label analysis. It lives
// only for the duration of a request; the user store persists a reduced
// summary of it.
type AnalysisResult struct {
	ScanID      string           `json:"scanId"`
	Ingredients []IngredientInfo `json:"ingredients"`
	Summary     string           `json:"summary,omitempty"`
}

// IngredientInfo describes one extracted ingredient. Every field except the
// name is optional and may be absent from the serialized form.
type IngredientInfo struct {
	Name             string   `json:"name"`
	ENumber          string   `json:"eNumber,omitempty"`
	Category         string   `json:"category,omitempty"`
	Purpose          string   `json:"purpose,omitempty"`
	Description      string   `json:"description,omitempty"`
	AlternativeNames []string `json:"alternativeNames,omitempty"`
	Origin           string   `json:"origin,omitempty"`
	SafetyNote       string   `json:"safetyNote,omitempty"`
}
