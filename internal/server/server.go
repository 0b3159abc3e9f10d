// Package server exposes the extforge HTTP surface: liveness probe, editor
// allow-list, extension browsing, editor launch, and extension scaffolding.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/extforge/extforge/internal/config"
	"github.com/extforge/extforge/internal/core"
	"github.com/extforge/extforge/internal/editor"
	"github.com/extforge/extforge/internal/extension"
	"github.com/extforge/extforge/internal/scaffold"
)

// CallerResolver extracts the authenticated operator identity from a request.
// The host's auth layer owns authentication; this server only consumes the
// resulting identity fact.
type CallerResolver func(*http.Request) core.CallerIdentity

// HeaderCallerResolver reads the caller identity the host middleware attaches
// as headers. It is the default resolver.
func HeaderCallerResolver(r *http.Request) core.CallerIdentity {
	privileged, err := strconv.ParseBool(r.Header.Get("X-Caller-Privileged"))
	if err != nil {
		privileged = false
	}
	return core.CallerIdentity{
		Handle:     r.Header.Get("X-Caller-Handle"),
		Privileged: privileged,
	}
}

// cachedManifest is one entry of the manifest read cache, validated by the
// manifest file's modification time.
type cachedManifest struct {
	modTime  time.Time
	manifest *extension.Manifest
}

// PluginServer stores the state and dependencies of the extforge HTTP server.
type PluginServer struct {
	mu            sync.RWMutex
	cfg           *config.Config
	configPath    string
	scaffolder    *scaffold.Scaffolder
	launcher      *editor.Launcher
	resolveCaller CallerResolver
	manifests     *xsync.MapOf[string, cachedManifest] // keyed by extension directory leaf
}

// New creates a PluginServer from the given configuration. configPath is
// remembered for SIGHUP reloads.
func New(cfg *config.Config, configPath string) *PluginServer {
	s := &PluginServer{
		cfg:           cfg,
		configPath:    configPath,
		resolveCaller: HeaderCallerResolver,
		manifests:     xsync.NewMapOf[string, cachedManifest](),
	}
	s.rebuild(cfg)
	return s
}

// SetCallerResolver replaces the default header-based resolver. The hosting
// environment uses this to wire its own session model in.
func (s *PluginServer) SetCallerResolver(resolver CallerResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolveCaller = resolver
}

// rebuild replaces the request-serving dependencies derived from cfg.
func (s *PluginServer) rebuild(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.scaffolder = scaffold.New(cfg.ExtensionsDir, cfg.TemplatesDir)
	s.launcher = editor.New(
		cfg.ExtensionsDir,
		cfg.Editors,
		cfg.DefaultEditor,
		core.NewLauncher(cfg.EditorTimeout),
	)
}

// Reload reloads configuration from disk and rebuilds the dependencies.
func (s *PluginServer) Reload() error {
	newCfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	s.rebuild(newCfg)
	s.manifests.Clear()
	return nil
}

// deps snapshots the request-serving dependencies under the read lock.
func (s *PluginServer) deps() (*config.Config, *scaffold.Scaffolder, *editor.Launcher, CallerResolver) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.scaffolder, s.launcher, s.resolveCaller
}

// Handler returns the HTTP handler serving all plugin routes.
func (s *PluginServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /probe", s.recovered(s.handleProbe))
	mux.HandleFunc("GET /editors", s.recovered(s.handleEditors))
	mux.HandleFunc("GET /extensions", s.recovered(s.handleExtensions))
	mux.HandleFunc("POST /open", s.recovered(s.handleOpen))
	mux.HandleFunc("POST /create", s.recovered(s.handleCreate))
	return mux
}

// recovered wraps a handler with panic recovery at the request boundary,
// the single point where we can still return a proper error response.
func (s *PluginServer) recovered(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				core.LogPanicRecovery("http handler", recovered)
				writeJSON(w, http.StatusInternalServerError, errorBody{
					Error: "internal error: panic recovered",
				})
			}
		}()
		handler(w, r)
	}
}

func (s *PluginServer) handleProbe(w http.ResponseWriter, r *http.Request) {
	_, _, _, resolve := s.deps()
	caller := resolve(r)
	if caller.Handle != "" {
		zap.L().Info("Probe", zap.String("caller", caller.Handle))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *PluginServer) handleEditors(w http.ResponseWriter, r *http.Request) {
	_, _, launcher, _ := s.deps()
	writeJSON(w, http.StatusOK, launcher.Editors())
}

func (s *PluginServer) handleExtensions(w http.ResponseWriter, r *http.Request) {
	cfg, _, _, resolve := s.deps()
	caller := resolve(r)

	infos, err := s.listExtensions(cfg.ExtensionsDir)
	if err != nil {
		s.respondError(w, "/extensions", caller, err)
		return
	}

	core.LogRequest("/extensions", caller, http.StatusOK, nil)
	writeJSON(w, http.StatusOK, infos)
}

// listExtensions lists installed extensions, serving manifests from the
// modtime-validated cache where possible.
func (s *PluginServer) listExtensions(extensionsRoot string) ([]extension.Info, error) {
	names, err := extension.ListDirs(extensionsRoot)
	if err != nil {
		return nil, err
	}

	infos := make([]extension.Info, 0, len(names))
	for _, name := range names {
		infos = append(infos, extension.Info{
			Name:     name,
			Path:     filepath.Join(extensionsRoot, name),
			Manifest: s.cachedManifestFor(extensionsRoot, name),
		})
	}
	return infos, nil
}

// cachedManifestFor returns the manifest of one extension, nil when none is
// readable. Cache entries are revalidated against the file's modtime.
func (s *PluginServer) cachedManifestFor(extensionsRoot, name string) *extension.Manifest {
	info, err := core.StatUnder(extensionsRoot, filepath.Join(name, extension.ManifestFileName))
	if err != nil {
		s.manifests.Delete(name)
		return nil
	}

	if cached, ok := s.manifests.Load(name); ok && cached.modTime.Equal(info.ModTime()) {
		return cached.manifest
	}

	manifest, err := extension.LoadManifest(filepath.Join(extensionsRoot, name))
	if err != nil {
		zap.L().Debug("Extension has no readable manifest",
			zap.String("extension", name),
			zap.Error(err))
		s.manifests.Delete(name)
		return nil
	}

	s.manifests.Store(name, cachedManifest{modTime: info.ModTime(), manifest: manifest})
	return manifest
}

// openRequest is the body of POST /open.
type openRequest struct {
	Editor        string `json:"editor"`
	ExtensionName string `json:"extensionName"`
}

func (s *PluginServer) handleOpen(w http.ResponseWriter, r *http.Request) {
	_, _, launcher, resolve := s.deps()
	caller := resolve(r)

	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, "/open", caller, core.NewValidationError("body", "must be valid JSON"))
		return
	}

	if !caller.Privileged {
		s.respondError(w, "/open", caller, core.ErrForbidden)
		return
	}

	if err := launcher.Open(r.Context(), req.Editor, req.ExtensionName); err != nil {
		s.respondError(w, "/open", caller, err)
		return
	}

	core.LogRequest("/open", caller, http.StatusOK, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *PluginServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	cfg, scaffolder, _, resolve := s.deps()
	caller := resolve(r)

	var req scaffold.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, "/create", caller, core.NewValidationError("body", "must be valid JSON"))
		return
	}

	result, err := scaffolder.Create(caller, req)
	if err != nil {
		s.respondError(w, "/create", caller, err)
		return
	}

	// Prime the manifest cache for the new extension.
	leaf := filepath.Base(result.Path)
	if info, statErr := core.StatUnder(cfg.ExtensionsDir, filepath.Join(leaf, extension.ManifestFileName)); statErr == nil {
		s.manifests.Store(leaf, cachedManifest{modTime: info.ModTime(), manifest: result.Manifest})
	}

	core.LogRequest("/create", caller, http.StatusOK, nil)
	writeJSON(w, http.StatusOK, result)
}

// errorBody is the JSON error payload. Details carries diagnostic text from
// failed external programs verbatim; this plugin serves operators only.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError maps a pipeline error onto an HTTP status and JSON body.
func (s *PluginServer) respondError(w http.ResponseWriter, route string, caller core.CallerIdentity, err error) {
	status, body := errorStatus(err)
	core.LogRequest(route, caller, status, err)
	writeJSON(w, status, body)
}

func errorStatus(err error) (int, errorBody) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		conflictErr   *core.ConflictError
		processErr    *core.ProcessError
	)

	switch {
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, errorBody{Error: "Forbidden"}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, errorBody{Error: validationErr.Error()}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, errorBody{Error: notFoundErr.Error()}
	case errors.As(err, &conflictErr):
		return http.StatusConflict, errorBody{Error: conflictErr.Error()}
	case errors.As(err, &processErr):
		return http.StatusInternalServerError, errorBody{
			Error:   fmt.Sprintf("%s failed: %v", processErr.Program, processErr.Err),
			Details: processErr.Details,
		}
	default:
		return http.StatusInternalServerError, errorBody{
			Error:   "internal error",
			Details: err.Error(),
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

// Serve starts the HTTP server on the given address and blocks until ctx is
// canceled or the listener fails.
func (s *PluginServer) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	zap.L().Info("Server listening", zap.String("address", addr))

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Server shutdown error", zap.Error(err))
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}
