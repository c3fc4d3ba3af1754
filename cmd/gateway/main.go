package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/Balram-8696/examprephub/internal/api/http"
	auth "github.com/Balram-8696/examprephub/internal/auth/middleware"
	"github.com/Balram-8696/examprephub/internal/config"
	"github.com/Balram-8696/examprephub/internal/db"
	"github.com/Balram-8696/examprephub/internal/exam"
	"github.com/Balram-8696/examprephub/internal/rbac"
	"github.com/Balram-8696/examprephub/internal/session"
	storage "github.com/Balram-8696/examprephub/internal/storage"
	syncx "github.com/Balram-8696/examprephub/internal/sync"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	testStore := exam.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh)
	sessionStore := session.NewSQLSessionStore(dbh)
	resultStore := session.NewSQLResultStore(dbh, events)
	mgr := session.NewManager(session.StoreSource{Store: testStore}, sessionStore, resultStore)

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	r.Get("/announcements", api.ListAnnouncementsHandler(dbh))

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Tests
		pr.With(rbac.Require("test:create")).Post("/tests", api.UploadTestHandler(testStore))
		pr.With(rbac.Require("test:view")).Get("/tests", api.ListTestsHandler(testStore))
		pr.With(rbac.Require("test:view")).Get("/tests/{testID}", api.GetTestHandler(testStore))
		pr.With(rbac.Require("test:publish")).
			Post("/tests/{testID}/publish", api.SetTestStatusHandler(testStore, exam.StatusPublished, events))
		pr.With(rbac.Require("test:publish")).
			Post("/tests/{testID}/unpublish", api.SetTestStatusHandler(testStore, exam.StatusDraft, events))
		pr.With(rbac.Require("test:delete")).Delete("/tests/{testID}", api.DeleteTestHandler(testStore))

		// Timed attempt flow
		pr.Route("/session", func(sr chi.Router) {
			sr.With(rbac.Require("session:start")).Post("/", api.StartSessionHandler(mgr))
			sr.With(rbac.Require("session:start")).Get("/", api.GetSessionHandler(mgr))
			sr.With(rbac.Require("session:mutate")).Post("/answer", api.AnswerHandler(mgr))
			sr.With(rbac.Require("session:mutate")).Post("/mark", api.ToggleMarkHandler(mgr))
			sr.With(rbac.Require("session:mutate")).Post("/nav", api.NavigateHandler(mgr))
			sr.With(rbac.Require("session:mutate")).Post("/language", api.SetLanguageHandler(mgr))
			sr.With(rbac.Require("session:submit")).Get("/summary", api.SessionSummaryHandler(mgr))
			sr.With(rbac.Require("session:start")).Get("/palette", api.SessionPaletteHandler(mgr))
			sr.With(rbac.Require("session:submit")).Post("/submit", api.SubmitSessionHandler(mgr))
			sr.With(rbac.Require("session:mutate")).Post("/exit", api.ExitSessionHandler(mgr))
		})

		// Practice flow
		pr.Route("/practice", func(sr chi.Router) {
			sr.With(rbac.Require("practice:run")).Post("/", api.StartPracticeHandler(mgr))
			sr.With(rbac.Require("practice:run")).Post("/answer", api.PracticeAnswerHandler(mgr))
			sr.With(rbac.Require("practice:run")).Post("/nav", api.PracticeNavigateHandler(mgr))
			sr.With(rbac.Require("practice:run")).Get("/summary", api.PracticeSummaryHandler(mgr))
			sr.With(rbac.Require("practice:run")).Post("/finish", api.FinishPracticeHandler(mgr))
		})

		// Results
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results", api.ListResultsHandler(resultStore))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results/{resultID}", api.GetResultHandler(resultStore))

		// Users (admin except change-password)
		pr.With(rbac.Require("users:bulk_upsert")).Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Announcements (admin mutations; public list is mounted above)
		pr.With(rbac.Require("announcement:create")).Post("/announcements", api.CreateAnnouncementHandler(dbh))
		pr.With(rbac.Require("announcement:delete")).
			Delete("/announcements/{announcementID}", api.DeleteAnnouncementHandler(dbh))

		// Study materials
		pr.Route("/materials", func(mr chi.Router) {
			mr.With(rbac.Require("material:manage")).Post("/{category}", api.UploadMaterialHandler(bs))
			mr.With(rbac.RequireAny("material:view", "material:manage")).Get("/", api.ListMaterialsHandler(bs))
			mr.With(rbac.RequireAny("material:view", "material:manage")).Get("/*", api.GetMaterialHandler(bs))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin makes sure the configured admin account exists so a fresh
// install is immediately usable. Skipped when no password hash is set.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminUser == "" || cfg.AdminPassHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx, `INSERT INTO users (id,username,password_hash,role,created_at)
		VALUES ($1,$2,$3,'admin',$4)
		ON CONFLICT (id) DO UPDATE SET password_hash=EXCLUDED.password_hash`,
		cfg.AdminUser, cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix())
	return err
}
