package domain

// Immutable planar location of a node. For routing-engine matrices X is longitude and Y latitude.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Return the point as [lon, lat] for external API compatibility.
func (p Point) LonLat() []float64 { return []float64{p.X, p.Y} }
