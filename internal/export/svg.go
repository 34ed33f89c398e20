// Package export renders stored measurement series as standalone SVG.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var ErrNoData = errors.New("export: fewer than two finite points")

// PlotOptions sets the canvas size and line color. Zero values pick
// 640x360 and a green stroke.
type PlotOptions struct {
	Width, Height int
	Stroke        string
	Title         string
}

// PlotSVG writes ys against xs as a polyline with 10% padding. Points
// with a non-finite coordinate are skipped.
func PlotSVG(w io.Writer, xs, ys []float64, opts PlotOptions) error {
	if opts.Width <= 0 {
		opts.Width = 640
	}
	if opts.Height <= 0 {
		opts.Height = 360
	}
	if opts.Stroke == "" {
		opts.Stroke = "#00ff88"
	}

	type point struct{ x, y float64 }
	points := make([]point, 0, len(xs))
	for i := range xs {
		if i < len(ys) && isFinite(xs[i]) && isFinite(ys[i]) {
			points = append(points, point{xs[i], ys[i]})
		}
	}
	if len(points) < 2 {
		return ErrNoData
	}

	minX, maxX := points[0].x, points[0].x
	minY, maxY := points[0].y, points[0].y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	width, height := float64(opts.Width), float64(opts.Height)
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)
	if opts.Title != "" {
		fmt.Fprintf(&sb, `<text x="8" y="16" fill="#cccccc" font-family="monospace" font-size="12">%s</text>
`, escape(opts.Title))
	}
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, opts.Stroke)

	for i, p := range points {
		x := (p.x - minX) / rangeX * width
		y := height - (p.y-minY)/rangeY*height
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
