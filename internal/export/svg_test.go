package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/wallplan/internal/model"
)

func TestPlanRenderer_RenderSVG(t *testing.T) {
	result, settings := planTemplate(t, "rect")

	var buf bytes.Buffer
	if err := NewPlanRenderer(result, settings).RenderSVG(&buf); err != nil {
		t.Fatalf("RenderSVG returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("output has no svg element")
	}
	if !strings.Contains(out, "</svg>") {
		t.Error("svg element is not closed")
	}
	if !strings.Contains(out, "<path") {
		t.Error("expected drawn paths")
	}
}

func TestPlanRenderer_RenderPNG(t *testing.T) {
	result, settings := planTemplate(t, "two-rooms")

	var buf bytes.Buffer
	r := NewPlanRenderer(result, settings)
	r.Row = 1
	if err := r.RenderPNG(&buf); err != nil {
		t.Fatalf("RenderPNG returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestPlanRenderer_EmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPlanRenderer(model.PlanResult{}, model.DefaultSettings()).RenderSVG(&buf); err == nil {
		t.Error("expected error for empty plan")
	}
}

func TestExportSVG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.svg")

	result, settings := planTemplate(t, "rect")
	if err := ExportSVG(path, result, settings, 0); err != nil {
		t.Fatalf("ExportSVG returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("svg file not created: %v", err)
	}
	if info.Size() == 0 {
		t.Error("svg file is empty")
	}
}
