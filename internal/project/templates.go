package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/wallplan/internal/model"
)

// DefaultTemplatePath returns the default file path for the templates store.
// This is located at ~/.wallplan/templates.json.
func DefaultTemplatePath() string {
	return filepath.Join(DefaultConfigDir(), "templates.json")
}

// SaveTemplates writes the template store to a JSON file.
func SaveTemplates(path string, store model.TemplateStore) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTemplates reads a template store from a JSON file.
// If the file does not exist, returns an empty store.
func LoadTemplates(path string) (model.TemplateStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, err
	}
	var store model.TemplateStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.TemplateStore{}, err
	}
	if store.Templates == nil {
		store.Templates = []model.ProjectTemplate{}
	}
	return store, nil
}

// LoadTemplatesWithBuiltins returns the built-in templates followed by the
// user's saved ones.
func LoadTemplatesWithBuiltins(path string) (model.TemplateStore, error) {
	saved, err := LoadTemplates(path)
	if err != nil {
		return model.TemplateStore{}, err
	}
	store := model.NewTemplateStore()
	for _, t := range model.BuiltinTemplates() {
		store.Add(t)
	}
	for _, t := range saved.Templates {
		store.Add(t)
	}
	return store, nil
}
