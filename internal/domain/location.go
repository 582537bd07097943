package domain

import "fmt"

// Immutable WGS84 coordinate pair (latitude, longitude).
type Location struct {
	Lat float64
	Lng float64
}

// Validate checks the coordinates against WGS84 bounds.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: latitude %g out of range [-90, 90]", ErrValidation, l.Lat)
	}
	if l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("%w: longitude %g out of range [-180, 180]", ErrValidation, l.Lng)
	}
	return nil
}

// Key renders the location rounded to 1e-5 degrees (~1 meter).
// Rounding absorbs floating-point jitter so that near-identical coordinates
// share the same cache entry.
func (l Location) Key() string {
	return fmt.Sprintf("%.5f,%.5f", l.Lat, l.Lng)
}
