package canvas

import (
	"fmt"
	"math"
	"strings"
)

// StandOffMode selects where a connection line stops short of its target.
type StandOffMode string

const (
	// StandOffHorizontal stops the line StandOff pixels left of the target
	// anchor, at the target's y, whatever the direction of travel.
	StandOffHorizontal StandOffMode = "horizontal"
	// StandOffAlongLine stops the line StandOff pixels back along the
	// direction of travel.
	StandOffAlongLine StandOffMode = "along-line"
)

// ParseStandOffMode maps a configuration value to a mode.
func ParseStandOffMode(v string) (StandOffMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "horizontal", "x":
		return StandOffHorizontal, nil
	case "along-line", "along", "line":
		return StandOffAlongLine, nil
	default:
		return "", fmt.Errorf("unsupported stand-off mode: %s", v)
	}
}

// Segment is a straight line between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Arrow is an arrowhead triangle. Apex is the tip; Left and Right are the back
// corners.
type Arrow struct {
	Apex  Point `json:"apex"`
	Left  Point `json:"left"`
	Right Point `json:"right"`
}

// Points formats the triangle for an SVG polygon.
func (a Arrow) Points() string {
	return fmt.Sprintf("%s,%s %s,%s %s,%s",
		num(a.Apex.X), num(a.Apex.Y),
		num(a.Left.X), num(a.Left.Y),
		num(a.Right.X), num(a.Right.Y))
}

// ConnectionGeometry computes the line and arrowhead between two anchors.
// Theta is measured over the raw anchors, not the shortened line.
func ConnectionGeometry(source, target Point, mode StandOffMode) (Segment, Arrow, float64) {
	theta := math.Atan2(target.Y-source.Y, target.X-source.X)

	var apex Point
	switch mode {
	case StandOffAlongLine:
		apex = Point{
			X: target.X - StandOff*math.Cos(theta),
			Y: target.Y - StandOff*math.Sin(theta),
		}
	default:
		apex = Point{X: target.X - StandOff, Y: target.Y}
	}

	arrow := Arrow{
		Apex: apex,
		Left: Point{
			X: apex.X - ArrowLength*math.Cos(theta-ArrowAngle),
			Y: apex.Y - ArrowLength*math.Sin(theta-ArrowAngle),
		},
		Right: Point{
			X: apex.X - ArrowLength*math.Cos(theta+ArrowAngle),
			Y: apex.Y - ArrowLength*math.Sin(theta+ArrowAngle),
		},
	}
	return Segment{From: source, To: apex}, arrow, theta
}

// num formats a coordinate compactly for markup.
func num(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
