package model

import "time"

// LogEntry is one logged food item as delivered by a log source.
// Nutrient fields hold whatever the source produced (numbers, numeric
// strings, nil, garbage); they are coerced to numbers only when aggregated.
type LogEntry struct {
	ID         string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	ConsumedAt time.Time `json:"consumed_at" yaml:"consumed_at"`
	Calories   any       `json:"calories" yaml:"calories"`
	Protein    any       `json:"protein_g" yaml:"protein_g"`
	Carbs      any       `json:"carbs_g" yaml:"carbs_g"`
	Fat        any       `json:"fat_g" yaml:"fat_g"`
}

type Goal struct {
	ID            int64
	UserID        string
	Calories      float64
	ProteinG      float64
	CarbsG        float64
	FatG          float64
	EffectiveDate string
	CreatedAt     time.Time
}
