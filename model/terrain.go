package model

// GameInfo is the static per-match metadata sent once in the hello handshake.
type GameInfo struct {
	MapName        string         `json:"map_name"`
	PlayableMin    Point          `json:"playable_min"`
	PlayableMax    Point          `json:"playable_max"`
	StartLocations []Point        `json:"start_locations,omitempty"`
	PlacementGrid  *PlacementGrid `json:"placement_grid,omitempty"`
}

// MirrorPoint reflects p through the centre of the playable area. On
// two-player maps the enemy usually starts at the mirror of our own base.
func (g GameInfo) MirrorPoint(p Point) Point {
	return Point{
		X: g.PlayableMin.X + g.PlayableMax.X - p.X,
		Y: g.PlayableMin.Y + g.PlayableMax.Y - p.Y,
	}
}

// InPlayable reports whether p lies within the playable rectangle.
func (g GameInfo) InPlayable(p Point) bool {
	return p.X >= g.PlayableMin.X && p.X <= g.PlayableMax.X &&
		p.Y >= g.PlayableMin.Y && p.Y <= g.PlayableMax.Y
}

// PlacementGrid is the engine's buildability image: one bit per map cell,
// row-major, most significant bit first. Row 0 is y = 0.
type PlacementGrid struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	BitsPerPixel int    `json:"bits_per_pixel"`
	Data         []byte `json:"data"`
}

// Buildable reports whether cell (x, y) accepts structures.
// Out-of-bounds cells are never buildable.
func (g *PlacementGrid) Buildable(x, y int) bool {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return false
	}
	i := y*g.Width + x
	if g.BitsPerPixel == 8 {
		return i < len(g.Data) && g.Data[i] != 0
	}
	b := i / 8
	if b >= len(g.Data) {
		return false
	}
	return g.Data[b]&(0x80>>(i%8)) != 0
}

// Set marks cell (x, y) buildable or not. Used to build grids in tests and tools.
func (g *PlacementGrid) Set(x, y int, buildable bool) {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return
	}
	i := y*g.Width + x
	if g.BitsPerPixel == 8 {
		if buildable {
			g.Data[i] = 1
		} else {
			g.Data[i] = 0
		}
		return
	}
	mask := byte(0x80 >> (i % 8))
	if buildable {
		g.Data[i/8] |= mask
	} else {
		g.Data[i/8] &^= mask
	}
}

// NewPlacementGrid returns a 1-bit grid with every cell set to buildable.
func NewPlacementGrid(width, height int, buildable bool) *PlacementGrid {
	g := &PlacementGrid{
		Width:        width,
		Height:       height,
		BitsPerPixel: 1,
		Data:         make([]byte, (width*height+7)/8),
	}
	if buildable {
		for i := range g.Data {
			g.Data[i] = 0xff
		}
	}
	return g
}
