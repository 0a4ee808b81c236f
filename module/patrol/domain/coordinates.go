package domain

// Coordinates is a WGS84 position. AccuracyM is the sensor-reported
// uncertainty radius in meters, zero when the sensor did not report one.
type Coordinates struct {
	Lat       float64 `json:"latitude"`
	Lon       float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m,omitempty"`
}
