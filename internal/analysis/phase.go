package analysis

import (
	"strings"

	"github.com/san-kum/coldsim/internal/sim"
)

// Point is one sample of a portrait.
type Point struct{ X, Y float64 }

// Portrait pairs two measurement columns, such as var_z against
// temperature to follow a cloud as it thermalizes.
func Portrait(ms []sim.Measurement, xField, yField string) []Point {
	xs, ys := Column(ms, xField), Column(ms, yField)
	points := make([]Point, len(ms))
	for i := range ms {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return points
}

// PortraitToASCII renders points on a width by height character grid with
// 10% padding. The first sample is drawn as 'o', the last as '*'.
func PortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
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

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	plot := func(p Point, r rune) {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = r
		}
	}
	for _, p := range points {
		plot(p, '•')
	}
	plot(points[0], 'o')
	plot(points[len(points)-1], '*')

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
