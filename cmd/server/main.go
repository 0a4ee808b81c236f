package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vwin2537-arch/-BaanCHECK/config"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol"
)

func main() {
	cfg := config.Load()

	db, err := config.NewSQLite(cfg)
	if err != nil {
		log.Fatalf("sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	ctx := context.Background()
	pullInterval := time.Duration(cfg.PullIntervalMin) * time.Minute

	patrolModule, err := patrol.Build(ctx, db, amqpConn, mqttClient, cfg.RemoteLogURL, pullInterval)
	if err != nil {
		log.Fatalf("patrol module: %v", err)
	}

	if err := patrolModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	patrolModule.StartSync(ctx)
	defer patrolModule.StopSync()

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)

	patrolModule.RegisterRoutes(r.Group("/api"))

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
