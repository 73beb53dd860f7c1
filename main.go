package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gorilla/mux"

	"portrait-studio-server/modules/auth"
	"portrait-studio-server/modules/autogen"
	"portrait-studio-server/modules/common/config"
	"portrait-studio-server/modules/common/database"
	"portrait-studio-server/modules/common/persist"
	appredis "portrait-studio-server/modules/common/redis"
	"portrait-studio-server/modules/common/storage"
	"portrait-studio-server/modules/gallery"
	"portrait-studio-server/modules/gemini"
	"portrait-studio-server/modules/generate"
	"portrait-studio-server/modules/lab"
	"portrait-studio-server/modules/progress"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "portrait-studio",
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewClient(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Supabase: %v", err)
	}

	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RetryDelay)
	if err != nil {
		log.Fatalf("❌ Failed to create Gemini client: %v", err)
	}

	// Persistence strategy: object storage is the default; inline storage
	// remains selectable for environments without a bucket.
	var store persist.Store
	if cfg.StorageStrategy == "inline" {
		log.Println("⚠️  Inline storage strategy selected (deprecated)")
		store = persist.NewInlineStore(db)
	} else {
		store = persist.NewObjectStore(db, storage.NewClient(cfg))
	}

	hub := progress.NewHub()

	generateService := generate.NewService(geminiClient, store, hub, generate.Options{
		Mode:                cfg.GenerationMode,
		PacingDelay:         cfg.PacingDelay,
		ReferenceByteBudget: cfg.ReferenceByteBudget,
	})

	// Optional backends: chat-completion features and the batch tag queue
	// stay dark without their configuration.
	var openaiClient *openai.Client
	if cfg.HasOpenAI() {
		openaiClient = openai.NewClient(cfg.OpenAIAPIKey)
	}

	var autoService *autogen.Service
	if openaiClient != nil {
		optimizer := autogen.NewOptimizer(openaiClient, cfg.OpenAIModel)
		autoService = autogen.NewService(optimizer, generateService, store)
	}

	var analyzer lab.PostAnalyzer
	if openaiClient != nil {
		analyzer = lab.NewAnalyzer(openaiClient, cfg.OpenAIModel)
	}
	tagger := lab.NewTagger(openaiClient, cfg.OpenAIModel)

	var queue lab.BatchQueue
	if cfg.HasRedis() {
		if redisClient := appredis.Connect(cfg); redisClient != nil {
			labQueue := lab.NewQueue(redisClient, tagger)
			queue = labQueue
			go labQueue.StartWorker(ctx)
		}
	}

	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")

	auth.NewHandler(auth.NewService(db, store, cfg.AuthSecret, cfg.TokenTTL)).RegisterRoutes(r)
	generate.NewHandler(generateService).RegisterRoutes(r)
	autogen.NewHandler(autoService).RegisterRoutes(r)
	gallery.NewHandler(store, cfg.AuthSecret).RegisterRoutes(r)
	lab.NewHandler(lab.NewRegexScraper(), tagger, analyzer, queue).RegisterRoutes(r)
	progress.NewHandler(hub).RegisterRoutes(r)

	log.Printf("🚀 Portrait Studio Server starting on port %s", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📡 Progress stream: ws://localhost:%s/ws/progress", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
