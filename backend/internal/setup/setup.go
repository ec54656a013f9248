package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/postmove/backend/internal/handler"
	"github.com/itchan-dev/postmove/backend/internal/jobqueue"
	"github.com/itchan-dev/postmove/backend/internal/service"
	"github.com/itchan-dev/postmove/backend/internal/storage/pg"
	"github.com/itchan-dev/postmove/backend/internal/utils"
	"github.com/itchan-dev/postmove/shared/access"
	"github.com/itchan-dev/postmove/shared/config"
	"github.com/itchan-dev/postmove/shared/jwt"
	"github.com/itchan-dev/postmove/shared/locale"
	"github.com/itchan-dev/postmove/shared/logger"
	mw "github.com/itchan-dev/postmove/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Queue          *jobqueue.JobQueue
	Access         *access.CategoryAccess
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	queue, err := jobqueue.New(ctx, cfg.Private.Pg.DSN(), cfg.Public.Queue)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}
	if err := queue.Migrate(ctx); err != nil {
		queue.Close()
		storage.Cleanup()
		return nil, err
	}

	texts, err := locale.New(cfg.Public.Locale)
	if err != nil {
		queue.Close()
		storage.Cleanup()
		return nil, fmt.Errorf("failed to load locale: %w", err)
	}

	categoryAccess := access.New()
	if err := categoryAccess.Update(ctx, storage); err != nil {
		queue.Close()
		storage.Cleanup()
		return nil, err
	}

	guardian := service.NewGuardian(categoryAccess)
	creator := service.NewPostCreator(storage, &utils.PostRawValidator{MaxLength: cfg.Public.RawMaxLength}, service.NewCooker())
	auditor := service.NewModeratorPoster(creator, storage)
	titles := &utils.TopicTitleValidator{MinLength: cfg.Public.TitleMinLength, MaxLength: cfg.Public.TitleMaxLength}

	topic := service.NewTopic(storage, guardian)
	postMove := service.NewPostMove(storage, guardian, creator, auditor, queue, titles, texts, cfg.Public)

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Queue:          queue,
		Access:         categoryAccess,
		Handler:        handler.New(topic, postMove, storage, cfg),
		AuthMiddleware: mw.NewAuth(jwtService),
	}, nil
}

// Close releases the database pools.
func (d *Dependencies) Close() {
	d.Queue.Close()
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close storage", "error", err)
	}
}
