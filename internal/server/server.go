package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/boardinghouse/internal/config"
	"anoa.com/boardinghouse/internal/jobs"
	"anoa.com/boardinghouse/internal/middleware"
	"anoa.com/boardinghouse/pkg/broadcast"
	"anoa.com/boardinghouse/pkg/logger"
	"anoa.com/boardinghouse/pkg/metrics"
	"anoa.com/boardinghouse/pkg/validator"

	adminHttp "anoa.com/boardinghouse/internal/modules/admin/delivery/http"
	adminService "anoa.com/boardinghouse/internal/modules/admin/service"

	billHttp "anoa.com/boardinghouse/internal/modules/bill/delivery/http"
	billRepo "anoa.com/boardinghouse/internal/modules/bill/repository"
	billService "anoa.com/boardinghouse/internal/modules/bill/service"

	dashboardHttp "anoa.com/boardinghouse/internal/modules/dashboard/delivery/http"
	dashboardRepo "anoa.com/boardinghouse/internal/modules/dashboard/repository"
	dashboardService "anoa.com/boardinghouse/internal/modules/dashboard/service"

	identityRepo "anoa.com/boardinghouse/internal/modules/identity/repository"
	identityService "anoa.com/boardinghouse/internal/modules/identity/service"

	memberHttp "anoa.com/boardinghouse/internal/modules/member/delivery/http"
	memberRepo "anoa.com/boardinghouse/internal/modules/member/repository"
	memberService "anoa.com/boardinghouse/internal/modules/member/service"

	notifHttp "anoa.com/boardinghouse/internal/modules/notification/delivery/http"
	notifService "anoa.com/boardinghouse/internal/modules/notification/service"

	paymentHttp "anoa.com/boardinghouse/internal/modules/payment/delivery/http"
	paymentRepo "anoa.com/boardinghouse/internal/modules/payment/repository"
	paymentService "anoa.com/boardinghouse/internal/modules/payment/service"

	repairHttp "anoa.com/boardinghouse/internal/modules/repair/delivery/http"
	repairRepo "anoa.com/boardinghouse/internal/modules/repair/repository"
	repairService "anoa.com/boardinghouse/internal/modules/repair/service"

	scheduleHttp "anoa.com/boardinghouse/internal/modules/schedule/delivery/http"
	scheduleRepo "anoa.com/boardinghouse/internal/modules/schedule/repository"
	scheduleService "anoa.com/boardinghouse/internal/modules/schedule/service"

	searchService "anoa.com/boardinghouse/internal/modules/search/service"

	userHttp "anoa.com/boardinghouse/internal/modules/user/delivery/http"
	userRepo "anoa.com/boardinghouse/internal/modules/user/repository"
	userService "anoa.com/boardinghouse/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	hub         *broadcast.Hub
	scheduler   *jobs.Scheduler
	httpServer  *http.Server
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	log := logger.GetLogger()
	validator.UseJSONFieldNames()
	metrics.Register()

	s := &Server{db: db, redisClient: redisClient}

	var broker broadcast.Broker
	switch cfg.NotificationBackend {
	case config.BackendRedis:
		broker = broadcast.NewRedisBroker(redisClient)
	case config.BackendMemory:
		s.hub = broadcast.NewHub(broadcast.WithDropHook(func(string) {
			metrics.NotificationsDropped.Inc()
		}))
		broker = s.hub
	}
	log.Info("notification backend selected", zap.String("backend", cfg.NotificationBackend))

	// A nil broker must stay an untyped nil so the notifier and the websocket
	// handler see it as absent.
	var publisher broadcast.Publisher
	var subscriber broadcast.Subscriber
	if broker != nil {
		publisher, subscriber = broker, broker
	}
	notifier := notifService.NewNotifier(publisher)

	var memberIndex searchService.MemberIndex
	if host := cfg.MeiliSearchHost; host != "" {
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		memberIndex = searchService.NewMeiliMemberIndex(meiliClient)
	}

	userRepository := userRepo.NewUserRepository(db)
	memberRepository := memberRepo.NewMemberRepository(db)

	identitySvc := identityService.NewIdentityService(identityRepo.NewIdentityRepository(db), memberRepository)

	authSvc := userService.NewAuthService(userRepository, redisClient, userService.TokenConfig{
		Secret:        cfg.JWTSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
		LoginThrottle: cfg.LoginThrottle,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)

	adminSvc := adminService.NewAdminService(userRepository, identitySvc, notifier)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	memberSvc := memberService.NewMemberService(memberRepository, notifier, memberIndex)
	memberHandler := memberHttp.NewMemberHandler(memberSvc)

	scheduleSvc := scheduleService.NewScheduleService(scheduleRepo.NewScheduleRepository(db), notifier)
	scheduleHandler := scheduleHttp.NewScheduleHandler(scheduleSvc)

	paymentSvc := paymentService.NewPaymentService(paymentRepo.NewPaymentRepository(db), notifier)
	paymentHandler := paymentHttp.NewPaymentHandler(paymentSvc)

	billSvc := billService.NewBillService(billRepo.NewBillRepository(db), notifier)
	billHandler := billHttp.NewBillHandler(billSvc)

	repairSvc := repairService.NewRepairService(repairRepo.NewRepairRepository(db), notifier)
	repairHandler := repairHttp.NewRepairHandler(repairSvc)

	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo.NewDashboardRepository(db))
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardSvc)

	notificationHandler := notifHttp.NewNotificationHandler(subscriber, cfg.AllowedOrigins)

	s.scheduler = jobs.NewScheduler()
	if err := s.scheduler.Register(jobs.NewBackfillJob(identitySvc, cfg.BackfillCron)); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(logger.Middleware("/healthz", "/metrics"))
	router.Use(metrics.Middleware())

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(authSvc, userRepository, identitySvc)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/token/", authHandler.Token)
		auth.POST("/token/refresh/", authHandler.RefreshToken)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth(), authMiddleware.EnsureIdentity())
	{
		protected.GET("/users/me/", authHandler.Me)

		staff := protected.Group("")
		staff.Use(authMiddleware.RequireStaff())
		{
			staff.GET("/members/", memberHandler.ListMembers)
			staff.POST("/members/", memberHandler.CreateMember)
			staff.GET("/members/search/", memberHandler.SearchMembers)
			staff.GET("/members/:id/", memberHandler.GetMember)
			staff.PUT("/members/:id/", memberHandler.UpdateMember)
			staff.PATCH("/members/:id/", memberHandler.PatchMember)
			staff.DELETE("/members/:id/", memberHandler.DeleteMember)

			staff.GET("/schedules/", scheduleHandler.ListSchedules)
			staff.POST("/schedules/", scheduleHandler.CreateSchedule)
			staff.GET("/schedules/:id/", scheduleHandler.GetSchedule)
			staff.PUT("/schedules/:id/", scheduleHandler.UpdateSchedule)
			staff.PATCH("/schedules/:id/", scheduleHandler.PatchSchedule)
			staff.DELETE("/schedules/:id/", scheduleHandler.DeleteSchedule)

			staff.GET("/dashboard/stats/", dashboardHandler.GetStats)
		}

		// Owner-or-staff collections; guards live in the services.
		protected.GET("/payments/", paymentHandler.ListPayments)
		protected.POST("/payments/", paymentHandler.CreatePayment)
		protected.GET("/payments/:id/", paymentHandler.GetPayment)
		protected.PUT("/payments/:id/", paymentHandler.UpdatePayment)
		protected.PATCH("/payments/:id/", paymentHandler.PatchPayment)
		protected.DELETE("/payments/:id/", paymentHandler.DeletePayment)

		protected.GET("/bills/", billHandler.ListBills)
		protected.POST("/bills/", billHandler.CreateBill)
		protected.GET("/bills/:id/", billHandler.GetBill)
		protected.PUT("/bills/:id/", billHandler.UpdateBill)
		protected.PATCH("/bills/:id/", billHandler.PatchBill)
		protected.DELETE("/bills/:id/", billHandler.DeleteBill)

		protected.GET("/repairs/", repairHandler.ListRepairs)
		protected.POST("/repairs/", repairHandler.CreateRepair)
		protected.GET("/repairs/:id/", repairHandler.GetRepair)
		protected.PUT("/repairs/:id/", repairHandler.UpdateRepair)
		protected.PATCH("/repairs/:id/", repairHandler.PatchRepair)
		protected.DELETE("/repairs/:id/", repairHandler.DeleteRepair)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users/", adminHandler.GetAllUsers)
			adminGroup.POST("/users/", adminHandler.CreateUser)
			adminGroup.PUT("/users/:id/role/", adminHandler.SetRole)
			adminGroup.DELETE("/users/:id/", adminHandler.DeleteUser)
		}
	}

	ws := router.Group("/ws")
	ws.Use(authMiddleware.RequireAuth(), authMiddleware.EnsureIdentity())
	{
		ws.GET("/notifications/", notificationHandler.HandleWebSocket)
	}

	s.engine = router
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.scheduler.RunByName(ctx, jobs.BackfillIdentitiesJob); err != nil {
		logger.GetLogger().Warn("identity backfill at boot failed", zap.Error(err))
	}
	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.GetLogger().Info("server listening", zap.String("addr", addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown; closing the
	// hub ends their subscriptions.
	s.close()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) close() {
	s.scheduler.Stop()
	if s.hub != nil {
		s.hub.Close()
	}
}

func (s *Server) health(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	status := http.StatusOK

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		resp["status"] = "error"
		resp["db_status"] = "error"
		status = http.StatusServiceUnavailable
	} else {
		resp["db_status"] = "ok"
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			resp["status"] = "error"
			resp["redis_status"] = "error"
			status = http.StatusServiceUnavailable
		} else {
			resp["redis_status"] = "ok"
		}
	}

	c.JSON(status, resp)
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
