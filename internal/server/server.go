package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/eventhub/internal/config"
	"anoa.com/eventhub/internal/middleware"
	"anoa.com/eventhub/internal/queue"
	"anoa.com/eventhub/internal/scheduler"
	"anoa.com/eventhub/pkg/dispatch"
	"anoa.com/eventhub/pkg/storage"

	adminHttp "anoa.com/eventhub/internal/modules/admin/delivery/http"
	adminService "anoa.com/eventhub/internal/modules/admin/service"

	attachmentHttp "anoa.com/eventhub/internal/modules/attachment/delivery/http"
	attachmentRepo "anoa.com/eventhub/internal/modules/attachment/repository"
	attachmentService "anoa.com/eventhub/internal/modules/attachment/service"

	categoryHttp "anoa.com/eventhub/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/eventhub/internal/modules/category/repository"
	categoryService "anoa.com/eventhub/internal/modules/category/service"

	eventHttp "anoa.com/eventhub/internal/modules/event/delivery/http"
	eventRepo "anoa.com/eventhub/internal/modules/event/repository"
	eventService "anoa.com/eventhub/internal/modules/event/service"

	formHttp "anoa.com/eventhub/internal/modules/form/delivery/http"
	formRepo "anoa.com/eventhub/internal/modules/form/repository"
	formService "anoa.com/eventhub/internal/modules/form/service"

	invitationHttp "anoa.com/eventhub/internal/modules/invitation/delivery/http"
	invitationRepo "anoa.com/eventhub/internal/modules/invitation/repository"
	invitationService "anoa.com/eventhub/internal/modules/invitation/service"

	lineHttp "anoa.com/eventhub/internal/modules/line/delivery/http"
	lineService "anoa.com/eventhub/internal/modules/line/service"

	notiHttp "anoa.com/eventhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/eventhub/internal/modules/notification/repository"
	notifService "anoa.com/eventhub/internal/modules/notification/service"

	preferenceHttp "anoa.com/eventhub/internal/modules/preference/delivery/http"
	preferenceRepo "anoa.com/eventhub/internal/modules/preference/repository"
	preferenceService "anoa.com/eventhub/internal/modules/preference/service"

	profileHttp "anoa.com/eventhub/internal/modules/profile/delivery/http"
	profileService "anoa.com/eventhub/internal/modules/profile/service"

	registrationHttp "anoa.com/eventhub/internal/modules/registration/delivery/http"
	registrationRepo "anoa.com/eventhub/internal/modules/registration/repository"
	registrationService "anoa.com/eventhub/internal/modules/registration/service"

	searchService "anoa.com/eventhub/internal/modules/search/service"

	statHttp "anoa.com/eventhub/internal/modules/stat/delivery/http"
	statService "anoa.com/eventhub/internal/modules/stat/service"

	userHttp "anoa.com/eventhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	userService "anoa.com/eventhub/internal/modules/user/service"

	viewService "anoa.com/eventhub/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
	cancel      context.CancelFunc
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadFolder)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("initialize cloudinary storage: %w", err)
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	meiliSvc := searchService.NewMeiliSearchService(meiliClient, cfg.MeiliMasterKey)

	// Outbound email and LINE pushes go through RabbitMQ when configured.
	dispatchClient := dispatch.NewClient(cfg.MailFunctionURL, cfg.LineFunctionURL, cfg.FunctionAPIKey)
	inline := queue.NewInlineDispatcher(dispatchClient, dispatchClient)
	var dispatcher queue.Dispatcher = inline
	if cfg.RabbitMQURL != "" {
		dispatcher = queue.NewPublisher(cfg.RabbitMQURL, inline)
		consumer := queue.NewConsumer(cfg.RabbitMQURL, dispatchClient, dispatchClient)
		go consumer.Start(ctx)
	} else {
		log.Println("RABBITMQ_URL not set, dispatching email and LINE jobs inline")
	}

	// Repositories
	userRepository := userRepo.NewUserRepository(db)
	categoryRepository := categoryRepo.NewCategoryRepository(db)
	imageRepository := attachmentRepo.NewImageRepository(db)
	eventRepository := eventRepo.NewEventRepository(db)
	organizerRepository := eventRepo.NewOrganizerRepository(db)
	registrationRepository := registrationRepo.NewRegistrationRepository(db)
	invitationRepository := invitationRepo.NewInvitationRepository(db)
	notificationRepository := notifRepo.NewNotificationRepository(db)
	preferenceRepository := preferenceRepo.NewPreferenceRepository(db)
	draftRepository := formRepo.NewDraftRepository(redisClient, cfg.SchemaDraftTTL)

	// Auth & users
	tokens := userService.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := userService.NewAuthService(userRepository, tokens, redisClient, dispatcher, cfg.FrontendURL)
	userSvc := userService.NewUserService(userRepository)
	authHandler := userHttp.NewAuthHandler(authSvc, userSvc)
	authMiddleware := middleware.NewAuthMiddleware(userRepository, tokens, redisClient)

	adminSvc := adminService.NewAdminService(userRepository)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	profileSvc := profileService.NewProfileService(userRepository, imageStorage)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	lineAuth := lineService.NewOAuthAuthenticator(cfg.LineChannelID, cfg.LineChannelSecret, cfg.LineRedirectURL)
	lineSvc := lineService.NewLineService(userRepository, lineAuth, cfg.JWTSecret)
	lineHandler := lineHttp.NewLineHandler(lineSvc, cfg.FrontendURL)

	preferenceSvc := preferenceService.NewPreferenceService(preferenceRepository)
	preferenceHandler := preferenceHttp.NewPreferenceHandler(preferenceSvc)

	// Catalog & uploads
	categorySvc := categoryService.NewCategoryService(categoryRepository)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	attachmentSvc := attachmentService.NewAttachmentService(imageRepository, imageStorage)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	// Events
	viewSvc := viewService.NewViewService(redisClient, eventRepository)
	go viewSvc.StartViewSyncWorker(ctx)

	access := eventService.NewAuthorizer(eventRepository, organizerRepository)
	eventSvc := eventService.NewEventService(eventRepository, organizerRepository, imageRepository, categorySvc, imageStorage, meiliSvc, viewSvc, cfg.GoogleMapsAPIKey)
	organizerSvc := eventService.NewOrganizerService(organizerRepository, userRepository, access)
	eventHandler := eventHttp.NewEventHandler(eventSvc, organizerSvc)

	formSvc := formService.NewFormService(eventRepository, draftRepository, access)
	formHandler := formHttp.NewFormHandler(formSvc)

	// Notifications, registrations & invitations
	notificationSvc := notifService.NewNotificationService(notificationRepository, invitationRepository, registrationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, splitOrigins(cfg.AllowedOrigins))

	registrationSvc := registrationService.NewRegistrationService(registrationRepository, userRepository, organizerRepository, invitationRepository, access, notificationSvc, dispatcher, cfg.FrontendURL)
	registrationHandler := registrationHttp.NewRegistrationHandler(registrationSvc)

	invitationSvc := invitationService.NewInvitationService(invitationRepository, userRepository, registrationRepository, access, notificationSvc, dispatcher, redisClient, cfg.RateLimitInvite, cfg.FrontendURL)
	invitationHandler := invitationHttp.NewInvitationHandler(invitationSvc)

	statSvc := statService.NewStatService(userRepository, registrationRepository, invitationRepository, access)
	statHandler := statHttp.NewStatHandler(statSvc)

	// Background jobs
	jobs := scheduler.NewScheduler()
	if err := jobs.Register(scheduler.NewDeadlineReminderJob(cfg.ReminderCron, invitationRepository, notificationRepository, notificationSvc, dispatcher, cfg.FrontendURL)); err != nil {
		cancel()
		return nil, err
	}
	if err := jobs.Register(scheduler.NewOrphanImageCleanupJob(attachmentSvc)); err != nil {
		cancel()
		return nil, err
	}
	jobs.Start()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, splitOrigins(cfg.AllowedOrigins))

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/notifications/ws"},
	}))

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}
	api.GET("/line/callback", lineHandler.Callback)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			adminGroup.GET("/stats/users", statHandler.GetTotalUsers)
			adminGroup.POST("/categories", categoryHandler.CreateCategory)
			adminGroup.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		}

		// Users & account
		protected.GET("/users/search", authHandler.SearchUsers)
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)
		protected.GET("/preferences", preferenceHandler.Get)
		protected.PUT("/preferences", preferenceHandler.Update)
		protected.GET("/line/login", lineHandler.Login)
		protected.DELETE("/line/binding", lineHandler.Unbind)

		protected.GET("/categories", categoryHandler.GetAllCategories)
		protected.POST("/uploads/images", attachmentHandler.UploadImage)
		protected.GET("/search/token", eventHandler.SearchToken)

		// Event routes
		events := protected.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.ListEvents)
			events.GET("/managed", eventHandler.GetManagedEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.PUT("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)
			events.POST("/:id/cover", eventHandler.UploadCover)
			events.GET("/:id/stats", statHandler.GetEventStats)

			events.GET("/:id/organizers", eventHandler.ListOrganizers)
			events.POST("/:id/organizers", eventHandler.AddOrganizer)
			events.DELETE("/:id/organizers/:userId", eventHandler.RemoveOrganizer)

			events.GET("/:id/form-schema", formHandler.GetSchema)
			events.PUT("/:id/form-schema", formHandler.SaveSchema)
			events.GET("/:id/form-schema/draft", formHandler.GetDraft)
			events.DELETE("/:id/form-schema/draft", formHandler.DiscardDraft)
			events.POST("/:id/form-schema/draft/save", formHandler.SaveDraft)
			events.POST("/:id/form-schema/draft/personal-fields/:field/toggle", formHandler.TogglePersonalField)
			events.POST("/:id/form-schema/draft/questions", formHandler.AddQuestion)
			events.PATCH("/:id/form-schema/draft/questions/:qid", formHandler.UpdateQuestion)
			events.DELETE("/:id/form-schema/draft/questions/:qid", formHandler.DeleteQuestion)

			events.GET("/:id/registration-form", registrationHandler.GetForm)
			events.POST("/:id/registrations", registrationHandler.Register)
			events.GET("/:id/registrations", registrationHandler.ListTable)
			events.GET("/:id/registrations/export", registrationHandler.ExportCSV)
			events.PUT("/:id/registrations/me", registrationHandler.UpdateMine)
			events.DELETE("/:id/registrations/me", registrationHandler.CancelMine)
			events.PATCH("/:id/registrations/:rid/review", registrationHandler.Review)

			events.POST("/:id/invitations", invitationHandler.Invite)
		}

		protected.GET("/registrations/me", registrationHandler.ListMine)

		protected.GET("/invitations", invitationHandler.ListPending)
		protected.POST("/invitations/:id/accept", invitationHandler.Accept)
		protected.POST("/invitations/:id/reject", invitationHandler.Reject)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/panel", notificationHandler.GetPanel)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs,
		cancel:      cancel,
	}, nil
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Close stops the background jobs and workers.
func (s *Server) Close() {
	s.cancel()
	s.scheduler.Stop()
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
