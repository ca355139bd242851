package main

import (
	"github.com/famboard/famboard/config"
	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/routes"
	"github.com/famboard/famboard/services"
	"github.com/famboard/famboard/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(models.All()...)

	r := routes.SetupRouter(db)

	if cfg.SchedulerEnabled {
		scheduler := services.NewScheduler(
			services.NewGenerator(db, utils.Sugar),
			services.NewSweeper(db, utils.Sugar),
			utils.Sugar,
			services.WithDailySpec(cfg.DailyAssignSpec),
			services.WithWeeklySpec(cfg.WeeklyAssignSpec),
			services.WithSweepSpec(cfg.OverdueSweepSpec),
		)
		if err := scheduler.Start(); err != nil {
			utils.Sugar.Fatalf("scheduler failed to start: %v", err)
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
