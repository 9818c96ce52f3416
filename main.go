package main

import (
	"github.com/thriftly/thriftly/config"
	"github.com/thriftly/thriftly/models"
	"github.com/thriftly/thriftly/routes"
	"github.com/thriftly/thriftly/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Reward{},
		&models.Spin{},
		&models.Streak{},
		&models.StreakBadge{},
		&models.Goal{},
		&models.GoalMilestone{},
		&models.Level{},
		&models.Achievement{},
		&models.Expense{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
