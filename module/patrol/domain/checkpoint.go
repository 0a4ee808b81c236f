package domain

type ScheduleType string

const (
	ScheduleNone      ScheduleType = "NONE"
	ScheduleFixedTime ScheduleType = "FIXED_TIME"
	ScheduleInterval  ScheduleType = "INTERVAL"
)

// ScheduleConfig restricts when a checkpoint may be visited. FixedTimes
// entries are "HH:mm" local wall-clock times.
type ScheduleConfig struct {
	Type         ScheduleType `json:"type"`
	FixedTimes   []string     `json:"fixed_times,omitempty"`
	ToleranceMin int          `json:"tolerance_min,omitempty"`
	IntervalMin  int          `json:"interval_min,omitempty"`
}

// Checkpoint is a patrol point with a circular geofence. The id is immutable
// once issued; radius and schedule stay editable.
type Checkpoint struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Location Coordinates    `json:"location"`
	RadiusM  float64        `json:"radius_m"`
	Schedule ScheduleConfig `json:"schedule"`
}
