package app

import (
	"database/sql"

	"go-webtrack/internal/access"
	"go-webtrack/internal/config"
	"go-webtrack/internal/employee"
	"go-webtrack/internal/leave"
	"go-webtrack/internal/leavebalance"
	"go-webtrack/internal/leavepolicy"
	"go-webtrack/internal/leavetype"
	"go-webtrack/internal/messaging/kafka"
	"go-webtrack/internal/middleware"
	"go-webtrack/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	api *gin.RouterGroup,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	policy access.Policy,
	logger *zap.Logger,
) {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	leavePolicyRepo := leavepolicy.NewRepository(gormDB)
	leaveBalanceRepo := leavebalance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo, rdb, policy, logger)
	leavePolicyService := leavepolicy.NewService(db, leavePolicyRepo, leaveTypeRepo, policy, logger)
	leaveBalanceService := leavebalance.NewService(db, leaveBalanceRepo, employeeRepo, leaveTypeRepo, policy, logger)
	leaveService := leave.NewService(leave.Deps{
		DB:        db,
		Repo:      leaveRepo,
		Types:     leaveTypeRepo,
		Policies:  leavePolicyRepo,
		Ledger:    leavebalance.NewLedger(leaveBalanceRepo, logger),
		Employees: employeeRepo,
		Outbox:    outboxRepo,
		Access:    policy,
	}, logger)
	notificationService := notification.NewService(notificationRepo, policy, logger)

	// --- Handlers ---
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService, logger)
	leavePolicyHandler := leavepolicy.NewHandler(leavePolicyService, logger)
	leaveBalanceHandler := leavebalance.NewHandler(leaveBalanceService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)

	mutating := []gin.HandlerFunc{
		middleware.RateLimitByUser(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		middleware.Idempotency(rdb),
	}

	// --- Routes Registration ---
	leavetype.RegisterRoutes(api, leaveTypeHandler, policy)
	leavepolicy.RegisterRoutes(api, leavePolicyHandler, policy)
	leavebalance.RegisterRoutes(api, leaveBalanceHandler, policy)
	leave.RegisterRoutes(api, leaveHandler, policy, mutating...)
	notification.RegisterRoutes(api, notificationHandler, policy)
}
