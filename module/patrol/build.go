package patrol

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	handler "github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/handler/http"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/handler/subscriber"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database/sqlite"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/publisher/rabbitmq"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/remote/httpapi"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/sensor"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/service"
)

// Module bundles the patrol agent's services, handlers and subscribers.
type Module struct {
	Verification *service.VerificationService
	Registry     *service.RegistryService
	Sync         *service.SyncService

	scanHandler     *handler.ScanHandler
	registryHandler *handler.RegistryHandler
	fixSubscriber   *subscriber.FixSubscriber
}

// Build wires the patrol module onto its infrastructure: the local sqlite
// store, the RabbitMQ verdict exchange, the MQTT device feed, and the remote
// log endpoint.
func Build(ctx context.Context, db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, remoteURL string, pullInterval time.Duration) (*Module, error) {
	if err := sqlite.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("local schema: %w", err)
	}

	scanRepo := sqlite.NewScanRecordStore(db)
	cpRepo := sqlite.NewCheckpointStore(db)
	offRepo := sqlite.NewOfficerStore(db)

	verdictPub, err := rabbitmq.NewVerdictPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("verdict publisher: %w", err)
	}

	provider := sensor.NewProvider(0)
	remoteClient := httpapi.NewClient(remoteURL)

	registry := service.NewRegistryService(ctx, cpRepo, offRepo)
	verifySvc := service.NewVerificationService(registry, scanRepo, provider, verdictPub)
	syncSvc := service.NewSyncService(remoteClient, registry, scanRepo, pullInterval)

	return &Module{
		Verification:    verifySvc,
		Registry:        registry,
		Sync:            syncSvc,
		scanHandler:     handler.NewScanHandler(verifySvc, syncSvc),
		registryHandler: handler.NewRegistryHandler(registry, syncSvc),
		fixSubscriber:   subscriber.NewFixSubscriber(mqttClient, provider),
	}, nil
}

// RegisterRoutes mounts the agent API onto the given router group.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.scanHandler.Register(r)
	m.registryHandler.Register(r)
}

// StartSubscribers subscribes the device fix feed.
func (m *Module) StartSubscribers() error {
	return m.fixSubscriber.Start()
}

// StartSync begins the reconciliation loop.
func (m *Module) StartSync(ctx context.Context) {
	m.Sync.Start(ctx)
}

// StopSync halts the reconciliation loop and any pending settle-delay pull.
func (m *Module) StopSync() {
	m.Sync.Stop()
}
