// wallplan turns floor-plan wall drawings into modular insulated-wall panel
// layouts.
//
// Usage:
//
//	wallplan -input plan.dxf -layers WALLS -out build/
//	wallplan -template two-rooms -formats pdf,xlsx -out build/
//	wallplan -project house.wallplan.json -compare
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/wallplan/internal/engine"
	"github.com/piwi3910/wallplan/internal/export"
	"github.com/piwi3910/wallplan/internal/importer"
	"github.com/piwi3910/wallplan/internal/model"
	"github.com/piwi3910/wallplan/internal/project"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Output formats accepted by -formats.
const (
	formatPDF     = "pdf"
	formatLabels  = "labels"
	formatXLSX    = "xlsx"
	formatSVG     = "svg"
	formatPNG     = "png"
	formatGeoJSON = "geojson"
	formatJSON    = "json"
)

var allFormats = []string{formatPDF, formatLabels, formatXLSX, formatSVG, formatPNG, formatGeoJSON, formatJSON}

type options struct {
	input         string
	openings      string
	layers        string
	template      string
	projectPath   string
	saveProject   string
	preset        string
	presetsPath   string
	configPath    string
	catalogPath   string
	templatesPath string
	flip          string
	exclude       string
	outDir        string
	formats       string
	row           int
	compare       bool
	verbose       bool
	backup        string
	restore       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("wallplan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.input, "input", "", "Wall drawing or table to import (.dxf, .svg, .csv, .xlsx)")
	fs.StringVar(&o.openings, "openings", "", "Table of openings (.csv, .xlsx) with chain and offset columns")
	fs.StringVar(&o.layers, "layers", "", "Comma-separated drawing layers to import (default: all)")
	fs.StringVar(&o.template, "template", "", "Start from a template by id or name instead of -input")
	fs.StringVar(&o.projectPath, "project", "", "Load a saved project instead of -input")
	fs.StringVar(&o.saveProject, "save-project", "", "Save the project with its result to this path")
	fs.StringVar(&o.preset, "preset", "", "Tolerance preset name or \"auto\" (default: from config)")
	fs.StringVar(&o.presetsPath, "presets", "", "YAML preset table (default: from config or built-in)")
	fs.StringVar(&o.configPath, "config", project.DefaultConfigPath(), "Path to app config")
	fs.StringVar(&o.catalogPath, "catalog", project.DefaultCatalogPath(), "Path to module catalog")
	fs.StringVar(&o.templatesPath, "templates", project.DefaultTemplatePath(), "Path to saved templates")
	fs.StringVar(&o.flip, "flip", "", "Comma-separated chain ids whose exterior side is inverted")
	fs.StringVar(&o.exclude, "exclude", "", "Comma-separated panel keys excluded from corner normalization")
	fs.StringVar(&o.outDir, "out", ".", "Output directory")
	fs.StringVar(&o.formats, "formats", "pdf,labels,xlsx,svg,json", "Comma-separated outputs: "+strings.Join(allFormats, ","))
	fs.IntVar(&o.row, "row", 0, "Module row drawn by the svg and png outputs (0 = bottom)")
	fs.BoolVar(&o.compare, "compare", false, "Print a comparison of auto-tuning and every preset")
	fs.BoolVar(&o.verbose, "v", false, "Log planner diagnostics")
	fs.StringVar(&o.backup, "backup", "", "Write config, catalog, templates and presets to a backup file and exit")
	fs.StringVar(&o.restore, "restore", "", "Restore config, catalog, templates and presets from a backup file and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.backup == "" && o.restore == "" {
		sources := 0
		for _, s := range []string{o.input, o.template, o.projectPath} {
			if s != "" {
				sources++
			}
		}
		if sources != 1 {
			return o, errors.New("exactly one of -input, -template or -project is required")
		}
	}
	for _, f := range splitList(o.formats) {
		if !contains(allFormats, f) {
			return o, fmt.Errorf("unknown output format %q", f)
		}
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("wallplan: %v", err)
	}
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("wallplan: %v", err)
	}
}

func run(opts options, stdout, stderr io.Writer) error {
	config, err := project.LoadAppConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.backup != "" {
		return runBackup(opts, config, stdout)
	}
	if opts.restore != "" {
		return runRestore(opts, stdout)
	}

	presets, err := loadPresets(opts, config)
	if err != nil {
		return err
	}

	proj, err := loadProject(opts, config, stderr)
	if err != nil {
		return err
	}
	if opts.preset != "" {
		proj.Settings.Preset = opts.preset
	}
	proj.Overrides.FlippedChains = append(proj.Overrides.FlippedChains, splitList(opts.flip)...)
	proj.Overrides.ExcludedPanels = append(proj.Overrides.ExcludedPanels, splitList(opts.exclude)...)

	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(stderr, "", log.LstdFlags)
	}
	planner := &engine.Planner{Settings: proj.Settings, Presets: presets, Logger: logger}
	in := engine.Input{Segments: proj.Segments, Openings: proj.Openings, Overrides: proj.Overrides}

	if opts.compare {
		printComparison(stdout, planner.ComparePresets(in))
	}

	result, err := planner.Plan(in)
	if err != nil {
		return err
	}
	printSummary(stdout, result)

	if err := writeOutputs(opts, result, proj.Settings, stdout); err != nil {
		return err
	}

	if opts.saveProject != "" {
		proj.Result = &result
		if err := project.Save(opts.saveProject, proj); err != nil {
			return fmt.Errorf("saving project: %w", err)
		}
		project.AddRecentProject(&config, opts.saveProject)
		if err := project.SaveAppConfig(opts.configPath, config); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(stdout, "Saved project %s\n", opts.saveProject)
	}
	return nil
}

func loadPresets(opts options, config model.AppConfig) ([]model.TolerancePreset, error) {
	var (
		presets []model.TolerancePreset
		err     error
	)
	if opts.presetsPath != "" {
		presets, err = project.LoadPresets(opts.presetsPath)
	} else {
		presets, err = project.LoadConfiguredPresets(config)
	}
	if err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}
	return presets, nil
}

// loadProject builds the project from a saved file, a template or an import.
func loadProject(opts options, config model.AppConfig, stderr io.Writer) (model.Project, error) {
	var proj model.Project
	switch {
	case opts.projectPath != "":
		p, err := project.Load(opts.projectPath)
		if err != nil {
			return proj, fmt.Errorf("loading project: %w", err)
		}
		proj = p

	case opts.template != "":
		store, err := project.LoadTemplatesWithBuiltins(opts.templatesPath)
		if err != nil {
			return proj, fmt.Errorf("loading templates: %w", err)
		}
		t := store.FindByID(opts.template)
		if t == nil {
			t = store.FindByName(opts.template)
		}
		if t == nil {
			return proj, fmt.Errorf("unknown template %q (available: %s)", opts.template, strings.Join(store.Names(), ", "))
		}
		proj = t.ToProject(t.Name)

	default:
		catalog, err := project.LoadCatalog(opts.catalogPath)
		if err != nil {
			return proj, fmt.Errorf("loading catalog: %w", err)
		}
		res := importer.Import(opts.input, splitList(opts.layers)...)
		reportImport(stderr, opts.input, res)
		if len(res.Segments) == 0 {
			return proj, fmt.Errorf("no wall segments imported from %s", opts.input)
		}
		proj = model.NewProject()
		proj.Name = strings.TrimSuffix(filepath.Base(opts.input), filepath.Ext(opts.input))
		proj.Segments = res.Segments
		proj.Openings = res.Openings
		proj.Settings = project.NewProjectSettings(config, catalog)
	}

	if opts.openings != "" {
		res := importer.Import(opts.openings)
		reportImport(stderr, opts.openings, res)
		if len(res.Errors) > 0 && len(res.Openings) == 0 {
			return proj, fmt.Errorf("no openings imported from %s", opts.openings)
		}
		proj.Openings = append(proj.Openings, res.Openings...)
	}
	return proj, nil
}

func reportImport(w io.Writer, path string, res importer.ImportResult) {
	for _, msg := range res.Warnings {
		fmt.Fprintf(w, "[IMPORT] %s: warning: %s\n", path, msg)
	}
	for _, msg := range res.Errors {
		fmt.Fprintf(w, "[IMPORT] %s: error: %s\n", path, msg)
	}
}

func writeOutputs(opts options, result model.PlanResult, settings model.LayoutSettings, stdout io.Writer) error {
	formats := splitList(opts.formats)
	if len(formats) == 0 {
		return nil
	}
	if len(result.Chains) == 0 {
		fmt.Fprintln(stdout, "No walls found, nothing to export")
		return nil
	}
	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, f := range formats {
		var (
			path string
			err  error
		)
		switch f {
		case formatPDF:
			path = filepath.Join(opts.outDir, "layout.pdf")
			err = export.ExportPDF(path, result, settings)
		case formatLabels:
			path = filepath.Join(opts.outDir, "labels.pdf")
			err = export.ExportLabels(path, result)
		case formatXLSX:
			path = filepath.Join(opts.outDir, "materials.xlsx")
			err = export.ExportMaterialsXLSX(path, result, settings)
		case formatSVG:
			path = filepath.Join(opts.outDir, fmt.Sprintf("plan-row%d.svg", opts.row+1))
			err = export.ExportSVG(path, result, settings, opts.row)
		case formatPNG:
			path = filepath.Join(opts.outDir, fmt.Sprintf("plan-row%d.png", opts.row+1))
			err = writePNG(path, result, settings, opts.row)
		case formatGeoJSON:
			path = filepath.Join(opts.outDir, "plan.geojson")
			err = export.ExportGeoJSON(path, result)
		case formatJSON:
			path = filepath.Join(opts.outDir, "plan.json")
			err = writeJSON(path, result)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", f, err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", path)
	}
	return nil
}

func writePNG(path string, result model.PlanResult, settings model.LayoutSettings, row int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	r := export.NewPlanRenderer(result, settings)
	r.Row = row
	if err := r.RenderPNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(w io.Writer, result model.PlanResult) {
	m := result.Materials
	fmt.Fprintf(w, "Preset: %s | chains: %d | junctions: %d | sides: %s | footprint: %s\n",
		result.Preset, len(result.Chains), len(result.Junctions), result.SideStatus, result.Footprint.Status)
	fmt.Fprintf(w, "Rows: %d | modules: %d (full %d, corner cut %d, end cut %d) | closures: %d\n",
		m.Rows, m.ModuleCount, m.FullModules, m.CornerCutModules, m.EndCutModules, m.ClosurePieces)
	fmt.Fprintf(w, "Connectors: %d | stabilization grids: %d | corner adjustments: %d | reusable offcuts: %d\n",
		m.ConnectorTotal, m.StabilizationGrids, m.CornerAdjustments, len(m.Offcuts))
	for _, c := range result.OpeningCandidates {
		fmt.Fprintf(w, "Possible opening between %s and %s: %.0f mm\n", c.ChainA, c.ChainB, c.Width)
	}
}

func printComparison(w io.Writer, results []engine.ComparisonResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tPRESET\tCHAINS\tMODULES\tCLOSURES\tWASTE\tUNRESOLVED")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%v\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f%%\t%d\n",
			r.Scenario.Name, r.Result.Preset, r.Chains, r.Modules, r.Closures, r.WastePercent, r.Unresolved)
	}
	tw.Flush()
}

func runBackup(opts options, config model.AppConfig, stdout io.Writer) error {
	catalog, err := project.LoadCatalog(opts.catalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	templates, err := project.LoadTemplates(opts.templatesPath)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	presets, err := loadPresets(opts, config)
	if err != nil {
		return err
	}
	if err := project.ExportAllData(opts.backup, config, catalog, templates, presets); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote backup %s\n", opts.backup)
	return nil
}

func runRestore(opts options, stdout io.Writer) error {
	data, err := project.ImportAllData(opts.restore)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	presetsPath := opts.presetsPath
	if presetsPath == "" {
		presetsPath = data.Config.PresetsPath
	}
	if presetsPath == "" {
		presetsPath = project.DefaultPresetsPath()
		data.Config.PresetsPath = presetsPath
	}
	if err := project.SaveAppConfig(opts.configPath, data.Config); err != nil {
		return err
	}
	if err := project.SaveCatalog(opts.catalogPath, data.Catalog); err != nil {
		return err
	}
	if err := project.SaveTemplates(opts.templatesPath, data.Templates); err != nil {
		return err
	}
	if err := project.SavePresets(presetsPath, data.Presets); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Restored backup from %s\n", opts.restore)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
