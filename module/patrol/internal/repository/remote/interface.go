package remote

import (
	"context"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

// Action tags a submit envelope so the remote log knows which payload field
// to read.
type Action string

const (
	ActionLogScan       Action = "log_scan"
	ActionAddCheckpoint Action = "add_checkpoint"
	ActionAddOfficer    Action = "add_officer"
	ActionRemoveOfficer Action = "remove_officer"
)

// Snapshot is the full remote state. Scan records come back without
// checkpoint ids; the remote log keeps names only.
type Snapshot struct {
	Checkpoints []domain.Checkpoint `json:"checkpoints"`
	Officers    []domain.Officer    `json:"officers"`
	ScanRecords []domain.ScanRecord `json:"scan_records"`
}

// Envelope is the tagged-action submit payload. Exactly one payload field is
// set, matching Action.
type Envelope struct {
	Action     Action             `json:"action"`
	Scan       *domain.ScanRecord `json:"scan,omitempty"`
	Checkpoint *domain.Checkpoint `json:"checkpoint,omitempty"`
	Officer    *domain.Officer    `json:"officer,omitempty"`
	OfficerID  string             `json:"officer_id,omitempty"`
}

type Client interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
	Submit(ctx context.Context, env *Envelope) error
}
