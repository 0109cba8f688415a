package model

import "github.com/google/uuid"

// ModuleSystem is a reusable module system definition.
type ModuleSystem struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Manufacturer string     `json:"manufacturer"`
	Module       ModuleSpec `json:"module"`
}

// NewModuleSystem creates a new ModuleSystem with a generated ID.
func NewModuleSystem(name, manufacturer string, module ModuleSpec) ModuleSystem {
	return ModuleSystem{
		ID:           uuid.New().String()[:8],
		Name:         name,
		Manufacturer: manufacturer,
		Module:       module,
	}
}

// ApplyToSettings copies the module dimensions into the given LayoutSettings.
func (m ModuleSystem) ApplyToSettings(s *LayoutSettings) {
	s.Module = m.Module
	// Keep the minimum cut at one fundamental unit of the new module
	s.MinCut = m.Module.Tooth()
}

// Catalog holds the user's saved module systems.
type Catalog struct {
	Systems []ModuleSystem `json:"systems"`
}

// DefaultCatalog returns a catalog with the common core thicknesses.
func DefaultCatalog() Catalog {
	return Catalog{
		Systems: []ModuleSystem{
			NewModuleSystem("Core 150", "Generic", ModuleSpec{Width: 1200, Height: 400, CoreThickness: 150, PanelThickness: 75}),
			NewModuleSystem("Core 200", "Generic", ModuleSpec{Width: 1200, Height: 400, CoreThickness: 200, PanelThickness: 75}),
			NewModuleSystem("Core 250", "Generic", ModuleSpec{Width: 1200, Height: 400, CoreThickness: 250, PanelThickness: 75}),
			NewModuleSystem("Core 150 Passive", "Generic", ModuleSpec{Width: 1200, Height: 400, CoreThickness: 150, PanelThickness: 150}),
		},
	}
}

// FindByID returns a pointer to the module system with the given ID, or nil.
func (c *Catalog) FindByID(id string) *ModuleSystem {
	for i := range c.Systems {
		if c.Systems[i].ID == id {
			return &c.Systems[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first module system with the given name, or nil.
func (c *Catalog) FindByName(name string) *ModuleSystem {
	for i := range c.Systems {
		if c.Systems[i].Name == name {
			return &c.Systems[i]
		}
	}
	return nil
}

// Names returns the module system names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Systems))
	for i, s := range c.Systems {
		names[i] = s.Name
	}
	return names
}
