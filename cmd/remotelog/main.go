package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/vwin2537-arch/-BaanCHECK/config"
	"github.com/vwin2537-arch/-BaanCHECK/module/remotelog"
)

func main() {
	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := remotelog.NewStore(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("schema: %v", err)
	}

	r := gin.Default()
	remotelog.NewHandler(store).Register(&r.RouterGroup)

	log.Printf("remote log listening on :%s", cfg.RemoteLogPort)
	if err := r.Run(":" + cfg.RemoteLogPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
