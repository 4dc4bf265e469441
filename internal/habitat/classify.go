// Package habitat maps land-cover habitat codes to broad habitat classes
// and decides which features are eligible for an ecosystem-service model.
package habitat

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Class is a broad habitat class derived from a habitat code.
type Class string

// Broad habitat classes.
const (
	ClassWoodland     Class = "Woodland and scrub"
	ClassGrassland    Class = "Grassland"
	ClassHeathland    Class = "Heathland"
	ClassWetland      Class = "Wetland"
	ClassWater        Class = "Water"
	ClassCultivated   Class = "Cultivated"
	ClassBuiltUp      Class = "Built-up"
	ClassCoastal      Class = "Coastal"
	ClassUnclassified Class = "Unclassified"
)

// Table maps raw habitat codes to broad classes. It is an injected value;
// construct one with DefaultTable or LoadTable and pass it down explicitly.
type Table map[string]Class

// DefaultTable returns the built-in Phase 1 style code lookup.
func DefaultTable() Table {
	return Table{
		"A1.1.1": ClassWoodland,
		"A1.1.2": ClassWoodland,
		"A1.2.1": ClassWoodland,
		"A2.1":   ClassWoodland,
		"A3.1":   ClassWoodland,
		"B1.1":   ClassGrassland,
		"B2.1":   ClassGrassland,
		"B2.2":   ClassGrassland,
		"B4":     ClassGrassland,
		"B6":     ClassGrassland,
		"C3.1":   ClassGrassland,
		"D1.1":   ClassHeathland,
		"D2":     ClassHeathland,
		"E1.6.1": ClassWetland,
		"E3.1":   ClassWetland,
		"F1":     ClassWetland,
		"G1":     ClassWater,
		"G2":     ClassWater,
		"H6.4":   ClassCoastal,
		"H8.4":   ClassCoastal,
		"J1.1":   ClassCultivated,
		"J1.2":   ClassGrassland,
		"J2.1.2": ClassWoodland,
		"J3.6":   ClassBuiltUp,
		"J4":     ClassBuiltUp,
	}
}

// LoadTable reads a code → class lookup from a YAML file. Class values are
// free-form strings so synthetic tables can be used in tests.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "habitat: read lookup table %s", path)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "habitat: parse lookup table %s", path)
	}
	t := make(Table, len(raw))
	for code, class := range raw {
		t[code] = Class(class)
	}
	return t, nil
}

// Classify returns the broad class for a habitat code.
// Unknown codes map to ClassUnclassified.
func (t Table) Classify(code string) Class {
	if c, ok := t[code]; ok {
		return c
	}
	return ClassUnclassified
}

// Selector decides feature eligibility for one model: a feature qualifies
// when its broad class is in Classes, or its raw code is in AlwaysCodes
// regardless of class (e.g. a linear hedgerow code).
type Selector struct {
	Table       Table
	Classes     map[Class]bool
	AlwaysCodes map[string]bool
}

// NewSelector builds a Selector from class and code lists.
func NewSelector(table Table, classes []Class, alwaysCodes []string) Selector {
	s := Selector{
		Table:       table,
		Classes:     make(map[Class]bool, len(classes)),
		AlwaysCodes: make(map[string]bool, len(alwaysCodes)),
	}
	for _, c := range classes {
		s.Classes[c] = true
	}
	for _, c := range alwaysCodes {
		s.AlwaysCodes[c] = true
	}
	return s
}

// Eligible reports whether a habitat code qualifies under the selector.
func (s Selector) Eligible(code string) bool {
	if s.AlwaysCodes[code] {
		return true
	}
	return s.Classes[s.Table.Classify(code)]
}
