package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Card is one entry of the cards manifest
type Card struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Source is one entry of the sources manifest, pairing a card with the URL
// its raw artwork is downloaded from
type Source struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// SourceSet is the full sources manifest document
type SourceSet struct {
	Cards []Source `json:"cards"`
}

// LoadCards reads the cards manifest. The document must carry a "cards" key
// holding a list; anything else is rejected up front so a bad manifest never
// produces a partial batch.
func LoadCards(path string) ([]Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("missing cards manifest: %v", err)
	}

	var doc struct {
		Cards json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing %s: %v", path, err)
	}
	// RawMessage keeps an explicit null as the literal bytes "null", which
	// would otherwise unmarshal into an empty batch.
	if doc.Cards == nil || string(doc.Cards) == "null" {
		return nil, fmt.Errorf("invalid manifest %s: expected key 'cards' as list", path)
	}

	var cards []Card
	if err := json.Unmarshal(doc.Cards, &cards); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: expected key 'cards' as list", path)
	}
	return cards, nil
}

// LoadSources reads the sources manifest
func LoadSources(path string) (*SourceSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("missing sources manifest: %v", err)
	}

	var doc struct {
		Cards json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing %s: %v", path, err)
	}
	// RawMessage keeps an explicit null as the literal bytes "null", which
	// would otherwise unmarshal into an empty batch.
	if doc.Cards == nil || string(doc.Cards) == "null" {
		return nil, fmt.Errorf("invalid manifest %s: expected key 'cards' as list", path)
	}

	set := &SourceSet{}
	if err := json.Unmarshal(doc.Cards, &set.Cards); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: expected key 'cards' as list", path)
	}
	return set, nil
}

// Save writes the sources manifest back out, indented and newline-terminated
// so re-runs produce clean diffs.
func (s *SourceSet) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding sources manifest: %v", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %v", path, err)
	}
	return nil
}
