package mapping

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordPack is a named set of extra rules, usually carrier specific.
type KeywordPack struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// LoadKeywordPack reads a YAML keyword pack from disk.
func LoadKeywordPack(filePath string) (*KeywordPack, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseKeywordPack(file)
}

// ParseKeywordPack parses a keyword pack from an io.Reader.
//
//	name: acme-freight
//	rules:
//	  - category: geography
//	    field: originPostal
//	    match: [[shipper], [zip, postal]]
func ParseKeywordPack(r io.Reader) (*KeywordPack, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var pack KeywordPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing keyword pack: %w", err)
	}

	for i, rule := range pack.Rules {
		if !rule.Field.IsKnown() {
			return nil, fmt.Errorf("keyword pack %q rule %d: unknown field %q", pack.Name, i, rule.Field)
		}
		if rule.Category == "" {
			return nil, fmt.Errorf("keyword pack %q rule %d: category is required", pack.Name, i)
		}
		if len(rule.Match) == 0 {
			return nil, fmt.Errorf("keyword pack %q rule %d: match is empty", pack.Name, i)
		}
		for _, group := range rule.Match {
			if len(group) == 0 {
				return nil, fmt.Errorf("keyword pack %q rule %d: empty match group", pack.Name, i)
			}
		}
	}

	return &pack, nil
}
