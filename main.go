package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"EchoVerse/controllers"
	"EchoVerse/middleware"
	"EchoVerse/pkg/answer"
	"EchoVerse/pkg/cache"
	"EchoVerse/pkg/config"
	"EchoVerse/pkg/dispatch"
	"EchoVerse/pkg/logger"
	"EchoVerse/pkg/postprocess"
	"EchoVerse/pkg/reminder"
	"EchoVerse/pkg/services"
	"EchoVerse/pkg/store"
	"EchoVerse/routes"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	st, err := store.Open(cfg.StoreBackend, cfg.StoreDSN, cfg.DataDir)
	if err != nil {
		zl.Fatal("failed to open content store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()
	gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModels, zl)
	if err != nil {
		zl.Fatal("failed to init completion service", zap.Error(err))
	}

	// search results are shared across requests
	searchCache := cache.New(cfg.SearchCacheMaxItems)
	stopJanitor := make(chan struct{})
	defer close(stopJanitor)
	searchCache.StartJanitor(time.Minute, stopJanitor)

	provider := services.NewSearchProvider(cfg.SearchProvider, cfg.SerpAPIKey, cfg.GoogleCSEKey, cfg.GoogleCSECX)
	if provider == nil {
		zl.Info("web search disabled")
	} else {
		zl.Info("web search enabled", zap.String("provider", provider.Name()))
	}

	chain := answer.NewChain(zl,
		answer.NewDocumentSource(st, gemini, zl),
		answer.NewSearchSource(provider, gemini, searchCache, time.Duration(cfg.SearchCacheTTLSeconds)*time.Second, zl),
		answer.NewEncyclopediaSource(services.NewWikipedia(cfg.WikiBaseURL, cfg.WikiSummaryURL), zl),
		answer.NewCompletionSource(gemini, zl),
	)

	var (
		synth services.Synthesizer
		audio postprocess.AudioSaver
	)
	if cfg.TTSEnabled {
		as, err := services.NewAudioStorage(cfg.StaticDir)
		if err != nil {
			zl.Fatal("failed to prepare audio directory", zap.Error(err))
		}
		synth, audio = services.NewGoogleTTS(), as
	}

	sched := reminder.NewScheduler(st)
	d := dispatch.New(dispatch.Config{
		Store:        st,
		Reminders:    sched,
		Chain:        chain,
		Post:         postprocess.NewPipeline(gemini, synth, audio, zl),
		HistoryLimit: cfg.HistoryLimit,
		Logger:       zl,
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(zl), middleware.Recovery(zl))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	routes.RegisterRoutes(r, routes.Deps{
		Dispatcher: d,
		Store:      st,
		Reminders:  sched,
		Uploads:    controllers.NewUploadController(st, gemini, services.NewGeminiOCR(gemini), zl),
		StaticDir:  cfg.StaticDir,
		Logger:     zl,
	})

	zl.Info("listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
