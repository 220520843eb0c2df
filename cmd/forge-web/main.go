package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/content-forge/internal/auth"
	"github.com/fpang/content-forge/internal/config"
	"github.com/fpang/content-forge/internal/gateway"
	"github.com/fpang/content-forge/internal/history"
	"github.com/fpang/content-forge/internal/logging"
	"github.com/fpang/content-forge/internal/pipeline"
)

// CLI flags
var (
	portFlag  int
	modelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "forge-web",
	Short: "Local JSON API for the content strategy pipeline",
	Long: `Forge Web starts a local server exposing the content pipeline over HTTP:
upload media, switch target platform, forge thumbnails, and browse the
run history from any frontend.

Examples:
  forge-web
  forge-web --port 9090
  forge-web --model gemini-3-pro-preview`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (default FORGE_PORT or 8080)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model override")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get API key")
	}

	model := cfg.Model
	if modelFlag != "" {
		model = modelFlag
	}

	ctx := context.Background()
	client, err := gateway.NewClient(ctx, apiKey, model, cfg.ImageModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	hist := history.NewStore(history.NewFileBlobStore(cfg.HistoryPath))
	srv := newServer(pipeline.New(client, hist))

	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/state", srv.handleState)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.HandleFunc("/api/media", srv.handleSubmitMedia)
	mux.HandleFunc("/api/media/preview", srv.handlePreview)
	mux.HandleFunc("/api/platform", srv.handleChangePlatform)
	mux.HandleFunc("/api/forge", srv.handleForge)
	mux.HandleFunc("/api/recall", srv.handleRecall)

	// Wrap with request ids, logging, and CORS for local dev
	handler := withRequestID(withLogging(withCORS(mux)))

	port := cfg.Port
	if portFlag != 0 {
		port = portFlag
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	log.Info().Int("port", port).Str("model", model).Msg("Starting forge-web server")
	fmt.Printf("\n  Content Forge API: http://localhost:%d\n\n", port)

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// --- Middleware ---

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestIDContext(r.Context(), id)))
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", requestIDFromContext(r.Context())).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only localhost origins; this is a local tool, not a hosted service.
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
