package flow

// Position is a location in percent of the containing box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds limits where the decline button may land, in percent.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// DeclineBounds keeps the decline button inside the question card.
var DeclineBounds = Bounds{MinX: 10, MaxX: 90, MinY: 12, MaxY: 87}

// initialDecline is where the decline button sits before it first moves.
var initialDecline = Position{X: 55, Y: 55}

// Relocate picks a uniformly random position inside b.
func Relocate(r Rand, b Bounds) Position {
	return Position{
		X: b.MinX + r.Float64()*(b.MaxX-b.MinX),
		Y: b.MinY + r.Float64()*(b.MaxY-b.MinY),
	}
}

// Viewport is the client's visible area in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultViewport is assumed until the client reports its size.
var DefaultViewport = Viewport{Width: 800, Height: 600}

// Size is a fixed width/height pair for the album widget.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FlipbookSize maps a viewport width onto one of three widget size tiers.
func FlipbookSize(width int) Size {
	switch {
	case width <= 480:
		w := width - 32
		if w > 300 {
			w = 300
		}
		if w < 1 {
			w = 1
		}
		return Size{Width: w, Height: 420}
	case width <= 600:
		return Size{Width: 340, Height: 460}
	default:
		return Size{Width: 380, Height: 520}
	}
}
