// Package profile describes the fiber composition of body regions and
// builds bundles from those descriptions.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/fault"
	"github.com/nvandessel/fibertract/internal/tract"
)

// TractSpec describes Count identical tracts of one kind. Nil overrides keep
// the direction defaults. Overrides are plain ints so out-of-range literals
// survive decoding and are reported as range violations.
type TractSpec struct {
	Kind         tract.Kind `yaml:"kind" json:"kind"`
	Count        int        `yaml:"count" json:"count"`
	Conductivity *int       `yaml:"conductivity,omitempty" json:"conductivity,omitempty"`
	Jitter       *int       `yaml:"jitter,omitempty" json:"jitter,omitempty"`
	Gain         *int       `yaml:"gain,omitempty" json:"gain,omitempty"`
	Sensitivity  *int       `yaml:"sensitivity,omitempty" json:"sensitivity,omitempty"`
	Endurance    *int       `yaml:"endurance,omitempty" json:"endurance,omitempty"`
	Elasticity   *int       `yaml:"elasticity,omitempty" json:"elasticity,omitempty"`
	Strength     *int       `yaml:"strength,omitempty" json:"strength,omitempty"`
	Mode         string     `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Profile is the composition of one body region. Its name becomes the
// bundle name.
type Profile struct {
	Name   string      `yaml:"name" json:"name"`
	Tracts []TractSpec `yaml:"tracts" json:"tracts"`
}

// File is the on-disk format of a custom profile set.
type File struct {
	Profiles []Profile `yaml:"profiles"`
}

// Build returns the tract for s.
func (s TractSpec) Build() (tract.FiberTract, error) {
	if !s.Kind.Valid() {
		return tract.FiberTract{}, fault.Configf("kind", "unknown tract kind %d", uint8(s.Kind))
	}
	t := tract.New(s.Kind)

	overrides := []struct {
		prop tract.Property
		v    *int
	}{
		{tract.Conductivity, s.Conductivity},
		{tract.Jitter, s.Jitter},
		{tract.Gain, s.Gain},
		{tract.Sensitivity, s.Sensitivity},
		{tract.Endurance, s.Endurance},
		{tract.Elasticity, s.Elasticity},
		{tract.Strength, s.Strength},
	}
	for _, o := range overrides {
		if o.v == nil {
			continue
		}
		v, err := fault.CheckU8(s.Kind.String()+"."+o.prop.String(), *o.v)
		if err != nil {
			return tract.FiberTract{}, err
		}
		t.Properties.Set(o.prop, v)
	}

	mode, err := tract.ParseReceptorMode(s.Mode)
	if err != nil {
		return tract.FiberTract{}, fault.Configf(s.Kind.String()+".mode", "%v", err)
	}
	if mode == tract.Tonic && s.Kind.IsEfferent() {
		return tract.FiberTract{}, fault.Configf(s.Kind.String()+".mode", "motor tracts have no receptor mode")
	}
	t.Mode = mode
	return t, nil
}

// Build expands the profile into its tracts, in spec order.
func (p Profile) Build() ([]tract.FiberTract, error) {
	if p.Name == "" {
		return nil, fault.Configf("name", "profile name is empty")
	}
	var out []tract.FiberTract
	for i, s := range p.Tracts {
		if s.Count < 1 {
			return nil, fault.Configf(fmt.Sprintf("%s.tracts[%d].count", p.Name, i), "must be at least 1, got %d", s.Count)
		}
		t, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
		for range s.Count {
			out = append(out, t)
		}
	}
	return out, nil
}

// Bundle builds a bundle named after the profile.
func (p Profile) Bundle(opts ...bundle.Option) (*bundle.Bundle, error) {
	tracts, err := p.Build()
	if err != nil {
		return nil, err
	}
	return bundle.New(p.Name, tracts, opts...)
}

// Count returns the total number of tracts the profile expands to.
func (p Profile) Count() int {
	n := 0
	for _, s := range p.Tracts {
		n += s.Count
	}
	return n
}

// Parse decodes a profile set from YAML.
func Parse(data []byte) ([]Profile, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	seen := make(map[string]bool, len(f.Profiles))
	for _, p := range f.Profiles {
		if seen[p.Name] {
			return nil, fault.Configf("profiles", "duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
		if _, err := p.Build(); err != nil {
			return nil, err
		}
	}
	return f.Profiles, nil
}

// LoadFile reads a profile set from a YAML file.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	return Parse(data)
}

// Marshal encodes profiles in the File format.
func Marshal(profiles []Profile) ([]byte, error) {
	return yaml.Marshal(File{Profiles: profiles})
}
