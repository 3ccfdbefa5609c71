package entity

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Finite reports whether both components are real numbers.
func (p LatLng) Finite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// Valid reports whether p is finite and inside the latitude and longitude ranges.
func (p LatLng) Valid() bool {
	return p.Finite() &&
		p.Lat >= MinLatitude && p.Lat <= MaxLatitude &&
		p.Lng >= MinLongitude && p.Lng <= MaxLongitude
}

// Point converts p to an orb point (longitude first).
func (p LatLng) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// ViewportTarget is the view the rendering surface should display.
type ViewportTarget struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}
