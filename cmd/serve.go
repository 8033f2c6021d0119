package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/model"
	"github.com/sells-group/siteforge/internal/onboard"
	"github.com/sells-group/siteforge/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scraping and onboarding HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		a := &api{
			scraper: newScraper(cfg),
			onboard: newOnboardService(cfg, st),
			store:   st,
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildMux(a, cfg.Server.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// api holds the handler dependencies. Any field may be nil; the matching
// endpoints then answer 503.
type api struct {
	scraper  onboard.Scraper
	onboard  *onboard.Service
	store    store.Store
	validate *validator.Validate
}

type createBusinessRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type listQuery struct {
	Limit  int `validate:"gte=0,lte=500"`
	Offset int `validate:"gte=0"`
}

func buildMux(a *api, origins []string) http.Handler {
	if a.validate == nil {
		a.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/test-scraper", a.testScraper)
		r.Post("/businesses", a.createBusiness)
		r.Get("/businesses", a.listBusinesses)
		r.Get("/businesses/{id}", a.getBusiness)
	})
	return r
}

func (a *api) testScraper(w http.ResponseWriter, r *http.Request) {
	if a.scraper == nil {
		writeError(w, http.StatusServiceUnavailable, "scraper not configured")
		return
	}
	u := r.URL.Query().Get("url")
	if u == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, a.scraper.Scrape(r.Context(), u))
}

func (a *api) createBusiness(w http.ResponseWriter, r *http.Request) {
	if a.onboard == nil {
		writeError(w, http.StatusServiceUnavailable, "onboarding not configured")
		return
	}
	var req createBusinessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	b, err := a.onboard.Onboard(r.Context(), req.URL)
	switch {
	case errors.Is(err, onboard.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		zap.L().Error("onboard request failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "onboarding failed")
	default:
		writeJSON(w, http.StatusCreated, b)
	}
}

func (a *api) getBusiness(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	id := chi.URLParam(r, "id")
	b, err := a.store.GetBusiness(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "business not found")
	case err != nil:
		zap.L().Error("get business failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load business")
	default:
		writeJSON(w, http.StatusOK, b)
	}
}

func (a *api) listBusinesses(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	q := r.URL.Query()
	var lq listQuery
	var err error
	if v := q.Get("limit"); v != "" {
		if lq.Limit, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if lq.Offset, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
	}
	if err := a.validate.Struct(lq); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be 0-500 and offset >= 0")
		return
	}

	filter := model.BusinessFilter{Limit: lq.Limit, Offset: lq.Offset}
	if t := q.Get("type"); t != "" {
		filter.BusinessType = model.BusinessType(t)
		if !filter.BusinessType.Valid() {
			writeError(w, http.StatusBadRequest, "unknown business type")
			return
		}
	}

	list, err := a.store.ListBusinesses(r.Context(), filter)
	if err != nil {
		zap.L().Error("list businesses failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list businesses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"businesses": list, "count": len(list)})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
