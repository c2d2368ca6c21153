package main

import (
	"time"

	"github.com/SeSAC-PrePair/prepair/config"
	"github.com/SeSAC-PrePair/prepair/dispatch"
	"github.com/SeSAC-PrePair/prepair/models"
	"github.com/SeSAC-PrePair/prepair/routes"
	"github.com/SeSAC-PrePair/prepair/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Question{}, &models.Dispatch{}, &models.Submission{}, &models.Reward{}, &models.Purchase{})

	if err := dispatch.SeedQuestionBank(db); err != nil {
		utils.Sugar.Warnf("question bank seed failed: %v", err)
	}
	if err := dispatch.SeedRewards(db); err != nil {
		utils.Sugar.Warnf("reward catalog seed failed: %v", err)
	}

	r := routes.SetupRouter(db)

	// Background cadence dispatcher (best-effort)
	dispatch.StartScheduler(db, time.Duration(cfg.DispatchIntervalMinutes)*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
