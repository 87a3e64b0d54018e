package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/database"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/metrics"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/router"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/scheduler"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/service"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedPlans(db)
	metrics.Init()

	investmentRepo := repository.NewInvestmentRepository(db)
	runRepo := repository.NewRunRepository(db)
	notifSvc := service.NewNotificationService(repository.NewNotificationRepository(db))

	settlementSvc, err := service.NewSettlementService(db, investmentRepo, runRepo, notifSvc, cfg.Settlement)
	if err != nil {
		log.Fatalf("settlement service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := time.LoadLocation(cfg.Settlement.Timezone)
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}
	sched := scheduler.New(ctx, settlementSvc, cfg.Settlement, loc)
	if err := sched.Register(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()

	engine := router.Setup(cfg, db, settlementSvc)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	cancel() // stop dispatching new settlement units; in-flight ones finish
	sched.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	log.Println("server stopped")
}
