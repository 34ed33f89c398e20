package export

import (
	"math"
	"strings"
	"testing"
)

func TestPlotSVG(t *testing.T) {
	var sb strings.Builder
	err := PlotSVG(&sb, []float64{0, 1, 2, 3}, []float64{0, 1, math.NaN(), 3}, PlotOptions{Width: 100, Height: 50, Title: "n <vs> t"})
	if err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Errorf("not a complete svg document:\n%s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Error("size not applied")
	}
	if !strings.Contains(out, "n &lt;vs&gt; t") {
		t.Error("title not escaped")
	}
	// three finite points: one move and two line segments
	if n := strings.Count(out, " L"); n != 2 {
		t.Errorf("expected 2 segments, got %d", n)
	}
	// first point sits at the padded lower left corner
	if !strings.Contains(out, `d="M8.3,45.8`) {
		t.Errorf("unexpected first point in:\n%s", out)
	}
}

func TestPlotSVGNeedsTwoPoints(t *testing.T) {
	var sb strings.Builder
	if err := PlotSVG(&sb, []float64{1}, []float64{1}, PlotOptions{}); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if err := PlotSVG(&sb, []float64{1, 2}, []float64{math.Inf(1), 1}, PlotOptions{}); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
