package router

import (
	"net/http"

	authsvc "equify-backend/internal/application/auth"
	companysvc "equify-backend/internal/application/companies"
	emailsvc "equify-backend/internal/application/emails"
	grantsvc "equify-backend/internal/application/grants"
	settlementsvc "equify-backend/internal/application/settlement"
	treasurysvc "equify-backend/internal/application/treasury"
	userssvc "equify-backend/internal/application/users"
	vestingsvc "equify-backend/internal/application/vesting"
	"equify-backend/internal/config"
	"equify-backend/internal/infrastructure/database"
	authhandler "equify-backend/internal/interfaces/handlers/auth"
	companyhandler "equify-backend/internal/interfaces/handlers/companies"
	exercisehandler "equify-backend/internal/interfaces/handlers/exercises"
	granthandler "equify-backend/internal/interfaces/handlers/grants"
	healthhandler "equify-backend/internal/interfaces/handlers/health"
	treasuryhandler "equify-backend/internal/interfaces/handlers/treasury"
	userhandler "equify-backend/internal/interfaces/handlers/users"
	vestinghandler "equify-backend/internal/interfaces/handlers/vesting"
	"equify-backend/internal/middleware"
	"equify-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Delete("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		var emailSender emailsvc.Sender
		if cfg.BrevoAPIKey != "" {
			emailSender = &emailsvc.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
		}

		// Users
		us := &userssvc.Service{DB: db, Rdb: rdb}
		uh := &userhandler.Handlers{Service: us, EmailSender: emailSender}
		// registration is public
		app.Post("/api/v1/users", uh.Register)
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Get("/me", uh.Me)
		ug.Patch("/:user_id/role", middleware.AuthorizePermission(constants.AssignRole), uh.UpdateRole)
		ug.Delete("/:user_id", middleware.AuthorizePermission(constants.RemoveUser), uh.Remove)

		// Companies
		cs := &companysvc.Service{DB: db}
		ch := &companyhandler.Handlers{Service: cs}
		cg := app.Group("/api/v1/companies", middleware.RequireAuth())
		cg.Post("/", ch.Create)
		cg.Get("/employees", middleware.AuthorizePermission(constants.ManageEmployees), ch.ListEmployees)
		cg.Post("/employees", middleware.AuthorizePermission(constants.ManageEmployees), ch.CreateEmployee)
		cg.Get("/:company_id", middleware.AuthorizePermission(constants.ViewData), ch.Get)

		// Grants
		gs := &grantsvc.Service{DB: db}
		gh := &granthandler.Handlers{Service: gs}
		gg := app.Group("/api/v1/grants", middleware.RequireAuth())
		gg.Post("/", middleware.AuthorizePermission(constants.CreateGrant), gh.Create)
		gg.Get("/", middleware.AuthorizePermission(constants.ViewData), gh.List)
		gg.Get("/:grant_id", middleware.AuthorizePermission(constants.ViewData), gh.Get)

		// Vesting
		vs := &vestingsvc.Service{DB: db}
		vh := &vestinghandler.Handlers{Service: vs}
		vg := app.Group("/api/v1/vesting", middleware.RequireAuth())
		vg.Get("/", middleware.AuthorizePermission(constants.ViewData), vh.List)
		vg.Post("/refresh", middleware.AuthorizePermission(constants.RefreshVesting), vh.Refresh)
		vg.Post("/transfer-vested", middleware.AuthorizePermission(constants.RefreshVesting), vh.TransferVested)

		// Exercise orders
		ss := &settlementsvc.Service{DB: db, EmailSender: emailSender}
		eh := &exercisehandler.Handlers{Service: ss}
		eg := app.Group("/api/v1/exercises", middleware.RequireAuth())
		eg.Post("/", middleware.AuthorizePermission(constants.RequestExercise), eh.Create)
		eg.Get("/", middleware.AuthorizePermission(constants.ViewData), eh.List)
		eg.Get("/:order_id", middleware.AuthorizePermission(constants.ViewData), eh.Get)
		eg.Post("/:order_id/approve", middleware.AuthorizePermission(constants.ApproveExerciseOrders), eh.Approve)
		eg.Post("/:order_id/reject", middleware.AuthorizePermission(constants.ApproveExerciseOrders), eh.Reject)
		eg.Post("/:order_id/cancel", middleware.AuthorizePermission(constants.RequestExercise), eh.Cancel)
		eg.Post("/:order_id/process", middleware.AuthorizePermission(constants.ProcessExerciseOrders), eh.Process)

		// Treasury
		trs := &treasurysvc.Service{DB: db}
		trh := &treasuryhandler.Handlers{Service: trs}
		trg := app.Group("/api/v1/treasury", middleware.RequireAuth())
		trg.Post("/deposits", middleware.AuthorizePermission(constants.ViewData), trh.CreateDeposit)
		trg.Get("/transfers", middleware.AuthorizePermission(constants.ViewData), trh.ListCashTransfers)
		trg.Post("/transfers/:transfer_id/approve", middleware.AuthorizePermission(constants.ApproveCashTransfers), trh.Approve)
		trg.Post("/transfers/:transfer_id/reject", middleware.AuthorizePermission(constants.ApproveCashTransfers), trh.Reject)
		trg.Get("/share-transfers", middleware.AuthorizePermission(constants.ViewData), trh.ListShareTransfers)
		trg.Get("/portfolios", middleware.AuthorizePermission(constants.ViewData), trh.ListPortfolios)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
