package domain

type ScanStatus string

const (
	ScanValid           ScanStatus = "VALID"
	ScanInvalidLocation ScanStatus = "INVALID_LOCATION"
	ScanInvalidTime     ScanStatus = "INVALID_TIME"
)

type ScanState string

const (
	StateAwaitingConfirmation ScanState = "AWAITING_CONFIRMATION"
	StateFinalized            ScanState = "FINALIZED"
)

// ScanRecord is one verified (or rejected) checkpoint visit. Once confirmed
// and persisted the verdict fields never change; only Note and EvidenceRef
// may be set between the draft and its confirmation. CheckpointID is empty
// on records that round-tripped through the remote log, which keeps the
// checkpoint name only.
type ScanRecord struct {
	ID             string      `json:"id"`
	CheckpointID   string      `json:"checkpoint_id,omitempty"`
	CheckpointName string      `json:"checkpoint_name"`
	Officer        string      `json:"officer"`
	TimestampMS    int64       `json:"timestamp_ms"`
	Status         ScanStatus  `json:"status"`
	Location       Coordinates `json:"location"`
	DistanceM      float64     `json:"distance_m"`
	Note           string      `json:"note,omitempty"`
	EvidenceRef    string      `json:"evidence_ref,omitempty"`
}

// Draft is a verdict-bearing record that has not been confirmed yet. It is
// not persisted and may still be abandoned without trace.
type Draft struct {
	Record ScanRecord `json:"record"`
	State  ScanState  `json:"state"`
}

// ScanEvent is the message published when a record is finalized.
type ScanEvent struct {
	ScanID         string     `json:"scan_id"`
	CheckpointID   string     `json:"checkpoint_id,omitempty"`
	CheckpointName string     `json:"checkpoint_name"`
	Officer        string     `json:"officer"`
	Status         ScanStatus `json:"status"`
	DistanceM      float64    `json:"distance_m"`
	TimestampMS    int64      `json:"timestamp_ms"`
}
