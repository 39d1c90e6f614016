package recommended

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultBaskets are past orders of the sample catalog used for "bought together".
func DefaultBaskets() [][]int {
	return [][]int{
		{1, 4, 8},
		{2, 5, 6},
		{1, 3},
		{5, 6, 7},
		{4, 6, 8},
		{2, 5},
	}
}

type basketsFile struct {
	Baskets [][]int `yaml:"baskets"`
}

// LoadBaskets reads a YAML file of the form
//
//	baskets:
//	  - [1, 4, 8]
//	  - [2, 5]
//
// An empty path returns DefaultBaskets. Empty baskets are dropped.
func LoadBaskets(path string) ([][]int, error) {
	if path == "" {
		return DefaultBaskets(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baskets file: %w", err)
	}
	var f basketsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse baskets file %s: %w", path, err)
	}
	out := make([][]int, 0, len(f.Baskets))
	for _, basket := range f.Baskets {
		if len(basket) > 0 {
			out = append(out, basket)
		}
	}
	return out, nil
}
