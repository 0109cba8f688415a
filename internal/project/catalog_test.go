package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/wallplan/internal/model"
)

func TestLoadCatalogCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "catalog.json")

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(catalog.Systems) != len(model.DefaultCatalog().Systems) {
		t.Errorf("expected the default catalog, got %d systems", len(catalog.Systems))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected the default catalog to be saved: %v", err)
	}

	again, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("second LoadCatalog failed: %v", err)
	}
	if again.Systems[0].ID != catalog.Systems[0].ID {
		t.Error("expected the saved catalog to be read back with the same IDs")
	}
}

func TestSaveAndLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	catalog := model.Catalog{Systems: []model.ModuleSystem{
		model.NewModuleSystem("Slim", "Acme", model.ModuleSpec{Width: 1000, Height: 250, CoreThickness: 120, PanelThickness: 50}),
	}}
	if err := SaveCatalog(path, catalog); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}

	loaded, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(loaded.Systems) != 1 {
		t.Fatalf("expected 1 system, got %d", len(loaded.Systems))
	}
	got := loaded.Systems[0]
	if got.Name != "Slim" || got.Manufacturer != "Acme" || got.Module.Height != 250 {
		t.Errorf("unexpected module system %+v", got)
	}
}

func TestLoadCatalogInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportCatalogMergesByID(t *testing.T) {
	dir := t.TempDir()
	existing := model.DefaultCatalog()

	imported := model.Catalog{Systems: []model.ModuleSystem{
		existing.Systems[0],
		model.NewModuleSystem("Imported", "Other", model.ModuleSpec{Width: 1200, Height: 300, CoreThickness: 200, PanelThickness: 60}),
	}}
	path := filepath.Join(dir, "import.json")
	if err := SaveCatalog(path, imported); err != nil {
		t.Fatal(err)
	}

	merged, err := ImportCatalog(path, existing)
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}
	if len(merged.Systems) != len(existing.Systems)+1 {
		t.Errorf("expected one new system, got %d total", len(merged.Systems))
	}
	if merged.FindByName("Imported") == nil {
		t.Error("expected the imported system in the catalog")
	}
}

func TestImportCatalogMissingFile(t *testing.T) {
	existing := model.DefaultCatalog()
	merged, err := ImportCatalog(filepath.Join(t.TempDir(), "none.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(merged.Systems) != len(existing.Systems) {
		t.Error("existing catalog should be returned unchanged")
	}
}
