package services

import (
	"cinestream/config"
	"cinestream/internal/database"
)

type Service struct {
	Transaction *TransactionService
	TMDB        *TMDBService
	Vidsrc      *VidsrcService
	Auth        *AuthService
	Validation  *ValidationService
	Scheduler   *SchedulerService
}

func New(db database.DB, config config.Config) Service {
	return Service{
		Transaction: NewTransactionService(db),
		TMDB:        NewTMDBService(config, db.Cache.ClientAPI),
		Vidsrc:      NewVidsrcService(config),
		Auth:        NewAuthService(config),
		Validation:  NewValidationService(),
		Scheduler:   NewSchedulerService(),
	}
}
