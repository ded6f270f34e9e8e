package shipment

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Record is the tracking entry of a shipment.
type Record struct {
	Status     string `yaml:"status" json:"status"`
	Location   string `yaml:"location" json:"location"`
	PostalCode string `yaml:"postal_code" json:"postal_code"`
}

// Confirmation is the reschedule record of a shipment.
type Confirmation struct {
	OriginalDate string `yaml:"original_date" json:"original_date"`
	NewDate      string `yaml:"new_date" json:"new_date"`
	Status       string `yaml:"status" json:"status"`
}

// Seed holds the initial content of the four tables.
type Seed struct {
	Shipments         map[string]Record       `yaml:"shipments"`
	RescheduleAllowed map[string]bool         `yaml:"reschedule_allowed"`
	RescheduleDates   map[string][]string     `yaml:"reschedule_dates"`
	Confirmations     map[string]Confirmation `yaml:"confirmations"`
}

// DefaultSeed returns the built-in fixtures.
func DefaultSeed() Seed {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("shipment: invalid embedded seed: %v", err))
	}
	return seed
}

// LoadSeed reads fixtures from a YAML file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML fixtures. Tracking ids are normalized.
func ParseSeed(data []byte) (Seed, error) {
	var raw Seed
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed: %w", err)
	}

	seed := Seed{
		Shipments:         make(map[string]Record, len(raw.Shipments)),
		RescheduleAllowed: make(map[string]bool, len(raw.RescheduleAllowed)),
		RescheduleDates:   make(map[string][]string, len(raw.RescheduleDates)),
		Confirmations:     make(map[string]Confirmation, len(raw.Confirmations)),
	}
	for id, r := range raw.Shipments {
		seed.Shipments[Normalize(id)] = r
	}
	for id, ok := range raw.RescheduleAllowed {
		seed.RescheduleAllowed[Normalize(id)] = ok
	}
	for id, dates := range raw.RescheduleDates {
		seed.RescheduleDates[Normalize(id)] = append([]string(nil), dates...)
	}
	for id, c := range raw.Confirmations {
		seed.Confirmations[Normalize(id)] = c
	}
	return seed, nil
}
