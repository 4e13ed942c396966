package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/galleria"
)

// Issuer mints signed URLs for gallery images.
type Issuer interface {
	Issue(ctx context.Context, req galleria.IssueRequest) (galleria.SignedURL, error)
}

// ObjectSource reads objects of one bucket.
type ObjectSource interface {
	Get(ctx context.Context, key string) (io.ReadSeekCloser, error)
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// GalleryManifest is the image list served by GET /api/images.
type GalleryManifest struct {
	Directory string   `json:"directory"`
	Images    []string `json:"images"`
}

// ObjectsConfig enables GET /objects/{bucket}/{key...} for the filesystem
// backend. Every request must carry a signature accepted by Verifier.
type ObjectsConfig struct {
	Bucket   string
	Source   ObjectSource
	Verifier RequestVerifier
}

type HandlerConfig struct {
	Gallery GalleryManifest
	CORS    CORSConfig
	Objects *ObjectsConfig // nil disables the objects route
	Logger  *slog.Logger
}

// Handler serves the gallery API.
type Handler struct {
	config HandlerConfig
	issuer Issuer
}

// NewHandler creates a new Handler with the given configuration and issuer.
func NewHandler(config *HandlerConfig, issuer Issuer) *Handler {
	return &Handler{
		config: *config,
		issuer: issuer,
	}
}

// Router returns an http.Handler with all routes configured. The objects
// route is only mounted when HandlerConfig.Objects is set.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(h.config.Logger))
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/signed-url", h.handleSignedURL)
		r.Get("/images", h.handleImages)
	})

	if h.config.Objects != nil {
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.config.Objects.Verifier))
			r.Get(ObjectsRoute+"/*", h.handleObject)
		})
	}

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleImages(w http.ResponseWriter, _ *http.Request) {
	manifest := h.config.Gallery
	if manifest.Images == nil {
		manifest.Images = []string{}
	}
	_ = WriteJSON(w, http.StatusOK, manifest)
}

func (h *Handler) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := galleria.IssueRequest{
		Directory: q.Get("directory"),
		Filename:  q.Get("filename"),
		Original:  q.Get("original") == "true",
	}

	signed, err := h.issuer.Issue(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	_ = WriteJSON(w, http.StatusOK, SignedURLResponse{SignedURL: signed.URL})
}

func (h *Handler) handleObject(w http.ResponseWriter, r *http.Request) {
	objects := h.config.Objects
	if objects == nil || objects.Source == nil {
		HandleError(w, ErrObjectsDisabled)
		return
	}

	prefix := ObjectsRoute + "/" + objects.Bucket + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		WriteError(w, http.StatusNotFound, "not found", "")
		return
	}

	key := strings.TrimPrefix(r.URL.Path, prefix)
	if !galleria.IsValidPath(key) {
		WriteError(w, http.StatusBadRequest, "invalid path", "")
		return
	}

	content, err := objects.Source.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, galleria.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not found", "")
		} else {
			HandleError(w, err)
		}
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, path.Base(key), time.Time{}, content)
}
