package profile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nvandessel/fibertract/internal/bundle"
	"github.com/nvandessel/fibertract/internal/fault"
)

// Catalog resolves profile names against the built-in presets and a set of
// custom profiles. Custom profiles may not shadow a preset.
type Catalog struct {
	custom map[string]Profile
}

// NewCatalog returns a catalog of the presets plus custom.
func NewCatalog(custom ...Profile) (*Catalog, error) {
	c := &Catalog{custom: make(map[string]Profile, len(custom))}
	for _, p := range custom {
		if _, err := Lookup(p.Name); err == nil {
			return nil, fault.Configf("profiles", "custom profile %q shadows a preset", p.Name)
		}
		if _, dup := c.custom[p.Name]; dup {
			return nil, fault.Configf("profiles", "duplicate profile %q", p.Name)
		}
		c.custom[p.Name] = p
	}
	return c, nil
}

// LoadCatalog builds a catalog with the custom profiles in path. An empty
// path yields the presets alone.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog()
	}
	custom, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(custom...)
}

// Lookup resolves name, presets first.
func (c *Catalog) Lookup(name string) (Profile, error) {
	if p, err := Lookup(name); err == nil {
		return p, nil
	}
	if p, ok := c.custom[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(c.Names(), ", "))
}

// Names returns every profile name, sorted.
func (c *Catalog) Names() []string {
	names := PresetNames()
	for name := range c.custom {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsPreset reports whether name is a built-in preset.
func (c *Catalog) IsPreset(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// Body builds a body of the named profiles. No names means the full body
// of presets. opts apply to every bundle, so noise is injected with
// bundle.WithNoiseFunc.
func (c *Catalog) Body(names []string, opts ...bundle.Option) (*bundle.Body, error) {
	if len(names) == 0 {
		names = PresetNames()
	}
	bundles := make([]*bundle.Bundle, 0, len(names))
	for _, name := range names {
		p, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		b, err := p.Bundle(opts...)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundle.NewBody(bundles...)
}
