package router

import (
	"database/sql"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "parish-calendar/docs"
	mem "parish-calendar/internal/adapters/storage/memory"
	pg "parish-calendar/internal/adapters/storage/postgres"
	"parish-calendar/internal/domain/events"
	"parish-calendar/internal/domain/ministries"
	"parish-calendar/internal/middleware"
	"parish-calendar/internal/platform/logger"
	"parish-calendar/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Storage: repos explícitos > DB > in-memory.
	DB           *sql.DB
	EventRepo    events.Repository
	MinistryRepo ministries.Repository

	Logger logger.Logger

	// Zona de las horas de eventos recurrentes. Default: UTC.
	Location *time.Location

	MaxOccurrencesPerEvent int
}

// Services queda expuesto para que main (seed, cron) use las mismas instancias que el router.
type Services struct {
	Events     *events.Service
	Ministries *ministries.Service
	Expander   *events.Expander
	EventRepo  events.Repository
}

func NewServices(opts Options) Services {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	eventRepo, ministryRepo := opts.EventRepo, opts.MinistryRepo
	switch {
	case eventRepo != nil && ministryRepo != nil:
	case opts.DB != nil:
		eventRepo = pg.NewEventsRepo(opts.DB, loc)
		ministryRepo = pg.NewMinistriesRepo(opts.DB)
	default:
		ministryRepo = mem.NewMinistryRepo()
		eventRepo = mem.NewEventRepo(ministryRepo, loc)
	}

	expander := events.NewExpander(nil, events.ExpanderOptions{
		Location:               loc,
		MaxOccurrencesPerEvent: opts.MaxOccurrencesPerEvent,
	})

	return Services{
		Events:     events.NewService(eventRepo, expander, opts.Logger),
		Ministries: ministries.NewService(ministryRepo),
		Expander:   expander,
		EventRepo:  eventRepo,
	}
}

func NewRouter(opts Options) http.Handler {
	return NewRouterWith(opts, NewServices(opts))
}

func NewRouterWith(opts Options, svc Services) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	events.RegisterRoutes(r, svc.Events, svc.Ministries, log)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r
}
