package models

// MappingSuggestion is the heuristic starting point for a new template.
// It is never persisted on its own.
type MappingSuggestion struct {
	FieldMappings        FieldMappings        `json:"fieldMappings"`
	CSVStructure         CSVStructure         `json:"csvStructure"`
	RateCalculationRules RateCalculationRules `json:"rateCalculationRules"`
	ValidationRules      ValidationRules      `json:"validationRules"`
	SampleData           [][]string           `json:"sampleData,omitempty"`
}

// ConfidenceScore rates a suggestion between 0 and 100.
type ConfidenceScore struct {
	Overall         float64 `json:"overall"`
	Coverage        float64 `json:"coverage"`
	EssentialBonus  float64 `json:"essentialBonus"`
	ExistingPenalty float64 `json:"existingPenalty"`
	MappedFields    int     `json:"mappedFields"`
	ExistingCount   int     `json:"existingTemplates"`
}
