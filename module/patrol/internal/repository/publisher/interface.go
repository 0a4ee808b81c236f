package publisher

import (
	"context"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

type VerdictPublisher interface {
	PublishVerdict(ctx context.Context, ev *domain.ScanEvent) error
}
