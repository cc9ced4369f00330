package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"docassist-backend/internal/analytics"
	"docassist-backend/internal/documents"
	"docassist-backend/internal/extract"
	"docassist-backend/internal/llm"
	"docassist-backend/internal/llm/gemini"
	"docassist-backend/internal/llm/openai"
	"docassist-backend/internal/qa"
	"docassist-backend/internal/search"
	"docassist-backend/internal/services/health"
	"docassist-backend/internal/shared/auth"
	"docassist-backend/internal/shared/config"
	"docassist-backend/internal/shared/server"
	"docassist-backend/internal/shared/storage/content"
	localstore "docassist-backend/internal/shared/storage/content/local"
	s3store "docassist-backend/internal/shared/storage/content/s3"
	"docassist-backend/internal/shared/storage/db"
	"docassist-backend/internal/shared/storage/kv"
	"docassist-backend/internal/shared/telemetry"
	"docassist-backend/internal/summarize"
	"docassist-backend/internal/users"
	"docassist-backend/internal/voice"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  content.Store

	AnalyticsService *analytics.Service
	DocumentsService *documents.Service
	SearchService    *search.Service
	QAService        *qa.Service
	SummaryService   *summarize.Service
	UsersService     *users.Service

	closers []func() error
}

type options struct {
	extractor   documents.Extractor
	llm         llm.Client
	transcriber voice.Transcriber
	store       content.Store
	transcripts summarize.TranscriptSource
}

// Option overrides a dependency Build would otherwise construct from config.
type Option func(*options)

func WithExtractor(e documents.Extractor) Option {
	return func(o *options) { o.extractor = e }
}

func WithLLM(c llm.Client) Option {
	return func(o *options) { o.llm = c }
}

func WithTranscriber(t voice.Transcriber) Option {
	return func(o *options) { o.transcriber = t }
}

func WithContentStore(s content.Store) Option {
	return func(o *options) { o.store = s }
}

func WithTranscripts(t summarize.TranscriptSource) Option {
	return func(o *options) { o.transcripts = t }
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.connect(ctx); err != nil {
		app.Close()
		return nil, err
	}

	store := o.store
	if store == nil {
		var err error
		if store, err = buildStore(ctx, cfg); err != nil {
			app.Close()
			return nil, err
		}
	}
	app.Store = store

	analyticsSvc, err := app.buildAnalytics()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.AnalyticsService = analyticsSvc

	extractor := o.extractor
	if extractor == nil {
		extractor = extract.New(
			extract.FileLayer{},
			extract.PopplerRasterizer{Dir: cfg.PopplerPath, DPI: cfg.OCRDPI},
			extract.TesseractRecognizer{Cmd: cfg.TesseractCmd, Language: cfg.OCRLanguage},
		)
	}

	model := o.llm
	if model == nil {
		if model, err = app.buildLLM(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}

	transcriber := o.transcriber
	if transcriber == nil && strings.TrimSpace(cfg.SpeechAPIKey) != "" {
		gs, err := voice.NewGoogleSpeech(ctx, cfg.SpeechAPIKey)
		if err != nil {
			app.Close()
			return nil, err
		}
		transcriber = gs
	}

	app.DocumentsService = &documents.Service{
		Store:     store,
		Extractor: extractor,
		Analytics: analyticsSvc,
	}
	app.SearchService = search.NewService(store)
	app.QAService = &qa.Service{
		Store:          store,
		Search:         app.SearchService,
		LLM:            model,
		Analytics:      analyticsSvc,
		AskMaxChars:    cfg.AskMaxChars,
		AskAllMaxChars: cfg.AskAllMaxChars,
	}
	app.SummaryService = summarize.NewService(model, cfg.SummaryMaxChars)
	if o.transcripts != nil {
		app.SummaryService.Transcripts = o.transcripts
	}

	var userRepo users.Repo = users.NewMemoryRepo()
	if cfg.UsersStore == "postgres" && app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
	}
	app.UsersService = users.NewService(userRepo, auth.NewSigner(cfg.JWTSecret, 0))

	healthSvc := health.NewService()
	if app.DB != nil {
		healthSvc.Register("postgres", app.DB.PingContext)
	}
	if app.Redis != nil {
		rdb := app.Redis
		healthSvc.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Health: healthSvc,
		Handlers: []server.Registrar{
			documents.NewHandler(app.DocumentsService, int64(cfg.MaxUploadMB)<<20),
			search.NewHandler(app.SearchService),
			analytics.NewHandler(analyticsSvc),
			qa.NewHandler(app.QAService),
			summarize.NewHandler(app.SummaryService),
			voice.NewHandler(transcriber),
			users.NewHandler(app.UsersService),
		},
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":             cfg.Env,
		"content_store":   cfg.ContentStoreType,
		"analytics_store": cfg.AnalyticsStore,
		"users_store":     cfg.UsersStore,
		"llm_provider":    cfg.LLMProvider,
	})
	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config
	if cfg.AnalyticsStore == "postgres" || cfg.UsersStore == "postgres" {
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			if !isDevLike(cfg.Env) {
				return err
			}
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"error": err})
		} else {
			a.DB = sqlDB
			a.closers = append(a.closers, sqlDB.Close)
		}
	}

	if cfg.AnalyticsStore == "redis" {
		client, err := kv.Connect(ctx, cfg.RedisURL)
		if err != nil {
			if !isDevLike(cfg.Env) {
				return err
			}
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
		} else {
			a.Redis = client
			a.closers = append(a.closers, client.Close)
		}
	}
	return nil
}

func (a *App) buildAnalytics() (*analytics.Service, error) {
	switch a.Config.AnalyticsStore {
	case "memory":
		return analytics.NewService(), nil
	case "postgres":
		if a.DB == nil {
			break
		}
		return analytics.NewPostgresService(analytics.NewPGStore(a.DB)), nil
	case "redis":
		if a.Redis == nil {
			break
		}
		return analytics.NewRedisService(analytics.NewRedisStore(a.Redis, "")), nil
	}
	path := a.Config.AnalyticsFile
	if strings.TrimSpace(path) == "" {
		path = "analytics.json"
	}
	return analytics.NewFileService(path), nil
}

func (a *App) buildLLM(ctx context.Context) (llm.Client, error) {
	cfg := a.Config
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return llm.Placeholder{}, nil
		}
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return llm.Placeholder{}, nil
		}
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiRPM)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	}
}

func buildStore(ctx context.Context, cfg config.Config) (content.Store, error) {
	switch cfg.ContentStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("CONTENT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.UploadDir, cfg.TextDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
