package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/panelforge/panelforge/pkg/engine"
	"github.com/panelforge/panelforge/pkg/errors"
)

// Render service defaults, overridable by config and flags.
const (
	defaultServeAddr = ":8423"
	defaultMaxBodyMB = 64
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	maxBody int
}

// newServeCmd creates the serve command that runs the HTTP render service.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Long: `Run the HTTP render service.

POST /render takes a .pfp archive body and responds with the rendered
PDF. GET /healthz reports liveness. The service shuts down cleanly on
SIGINT and SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if !cmd.Flags().Changed("addr") && cfg.Serve.Addr != "" {
				opts.addr = cfg.Serve.Addr
			}
			if !cmd.Flags().Changed("max-body") && cfg.Serve.MaxBodyMB > 0 {
				opts.maxBody = cfg.Serve.MaxBodyMB
			}
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().IntVar(&opts.maxBody, "max-body", defaultMaxBodyMB, "request body limit in MiB")

	return cmd
}

// runServe starts the HTTP server and blocks until the context is
// cancelled or the listener fails.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	mux := newServeMux(logger, newJournal(logger), int64(opts.maxBody)<<20)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Infof("render service listening on %s", opts.addr)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServeMux builds the service router. Every render request gets its
// own engine session, so concurrent renders never contend on a session
// busy flag; the shared journal is safe for concurrent appends.
func newServeMux(logger *log.Logger, journal engine.Journal, maxBody int64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests(logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/render", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("archive exceeds %d byte limit", tooLarge.Limit))
				return
			}
			writeError(w, http.StatusBadRequest, fmt.Errorf("read request body: %w", err))
			return
		}

		s := engine.NewSession(journal)
		p, err := s.LoadArchive(body)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		pdf, err := s.ExportDocument(req.Context(), p)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)
		w.Write(pdf)
	})

	return r
}

// logRequests logs one line per request with status and timing.
func logRequests(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}

// statusFor maps engine error codes onto HTTP status codes. Unknown
// errors are treated as internal.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeValidation, errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidRef, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeAssetNotFound:
		return http.StatusNotFound
	case errors.ErrCodeBusy:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRender, errors.ErrCodeImageDecode, errors.ErrCodeFontEmbed,
		errors.ErrCodeMaterialization, errors.ErrCodeAssetResolution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]string{"error": errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}
