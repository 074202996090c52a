package app

import (
	"cinestream/config"
	"cinestream/internal/controllers"
	"cinestream/internal/database"
	"cinestream/internal/handlers/middleware"
	"cinestream/internal/jobs"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"context"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	return Build(config, db)
}

// Build wires services, repositories and controllers around an open database.
func Build(config config.Config, db database.DB) (*App, error) {
	log := logger.New("app").Function("Build")

	services := services.New(db, config)
	repos := repositories.New(db)
	controllers := controllers.New(services, repos, config, db)
	middleware := middleware.New(config, controllers.Auth)

	if err := jobs.RegisterAllJobs(services.Scheduler, config, controllers); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		Services:    services,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Services.Transaction,
		a.Services.TMDB,
		a.Services.Vidsrc,
		a.Services.Auth,
		a.Services.Validation,
		a.Services.Scheduler,
		a.Repos.Media,
		a.Repos.Genre,
		a.Repos.Episode,
		a.Repos.User,
		a.Controllers.Catalog,
		a.Controllers.Genre,
		a.Controllers.Episode,
		a.Controllers.User,
		a.Controllers.Auth,
		a.Controllers.Relation,
		a.Controllers.Metadata,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
