package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/wallplan/internal/model"
)

// DefaultCatalogPath returns the default file path for the module catalog.
// This is located at ~/.wallplan/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, catalog model.Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCatalog reads the catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			catalog := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, catalog); saveErr != nil {
				return catalog, saveErr
			}
			return catalog, nil
		}
		return model.Catalog{}, err
	}
	var catalog model.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return model.Catalog{}, err
	}
	if catalog.Systems == nil {
		catalog.Systems = []model.ModuleSystem{}
	}
	return catalog, nil
}

// ImportCatalog imports module systems from a user-specified JSON file,
// merging them into the existing catalog. Duplicate IDs are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Systems))
	for _, s := range existing.Systems {
		ids[s.ID] = true
	}
	for _, s := range imported.Systems {
		if !ids[s.ID] {
			existing.Systems = append(existing.Systems, s)
			ids[s.ID] = true
		}
	}
	return existing, nil
}
