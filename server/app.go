package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"latch/config"
	"latch/internal/db"
	"latch/internal/enroll"
	"latch/internal/health"
	"latch/internal/identity"
	"latch/internal/logs"
	"latch/internal/maintenance"
	"latch/internal/middleware"
	"latch/internal/models"
	"latch/internal/repo"
	"latch/internal/web"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB (опционально) */
	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		a.db = d

		if err := a.db.AutoMigrate(&models.EnrollmentCode{},
			&models.Device{},
			&models.EnrollmentEvent{}); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
	}

	/* 3) Store: SQL через адаптер либо in-memory без БД */
	var store enroll.Store
	if a.db != nil {
		store = newStoreAdapter(repo.NewEnrollmentStore(a.db))
	} else {
		logs.Logger.Warn("no database configured, enrollment state is in-memory")
		store = enroll.NewMemStore()
	}

	/* 4) Identity provider. Без ключей verifier == nil: защищённые ручки
	   отвечают 500 missing_credentials, деградация не допускается. */
	var verifier identity.Verifier
	if a.cfg.HasSupabase() {
		verifier = identity.NewSupabaseVerifier(a.cfg.Supabase.URL, a.cfg.Supabase.AnonKey, nil)
	} else {
		logs.Logger.Warn("supabase url/anon key not set, authenticated endpoints disabled")
	}
	auth := identity.RequireAuth(verifier)

	/* 5) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	/* 6) Health + публичный конфиг */
	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db) // /health, /readyz
	} else {
		health.RegisterRoutes(a.Router) // только /health
	}
	a.Router.HandleFunc("/config", configHandler(a.cfg)).Methods(http.MethodGet)

	/* 7) Enrollment protocol */
	svc := enroll.NewService(store)
	enroll.RegisterRoutes(a.Router, enroll.NewHandler(svc, a.cfg.Server.PublicURL), auth)

	/* 8) Maintenance: журнал принадлежит обработчику, не пакету */
	maintenance.RegisterRoutes(a.Router, maintenance.NewHandler(maintenance.NewLog()), auth)

	/* 9) Страница привязки + статика */
	web.Attach(a.Router)
	if dir := a.cfg.Server.StaticDir; dir != "" {
		a.Router.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))
	}

	/* (необязательно) вывести известные маршруты в лог при старте */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

// GET /config — только публичная пара URL+anon key.
// Сервисный ключ наружу не сериализуется ни при какой конфигурации.
func configHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !cfg.HasSupabase() {
			models.WriteError(w, http.StatusInternalServerError, "missing_credentials")
			return
		}
		models.WriteJSON(w, http.StatusOK, map[string]string{
			"SUPABASE_URL":      cfg.Supabase.URL,
			"SUPABASE_ANON_KEY": cfg.Supabase.AnonKey,
		})
	}
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// Жёсткие таймауты — это важно для production
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
