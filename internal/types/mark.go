package types

import "time"

type MarkShape string

const (
	MarkShapeTriangleUp   MarkShape = "triangle_up"
	MarkShapeTriangleDown MarkShape = "triangle_down"
	MarkShapeCross        MarkShape = "cross"
)

type MarkColor string

const (
	MarkColorRed    MarkColor = "red"
	MarkColorGreen  MarkColor = "green"
	MarkColorOrange MarkColor = "orange"
)

// Mark is a chart annotation placed on the bar of an executed trade.
type Mark struct {
	Time    time.Time
	Price   float64
	Signal  Signal
	Color   MarkColor
	Shape   MarkShape
	Title   string
	Message string
}
