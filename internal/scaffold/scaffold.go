// Package scaffold sequences the creation of a new extension: authorization
// and validation gates, directory allocation, skeleton materialization,
// manifest write, and repository initialization, in that fixed order,
// short-circuiting on the first failure.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/extforge/extforge/internal/core"
	"github.com/extforge/extforge/internal/extension"
	"github.com/extforge/extforge/internal/gitrepo"
)

// Request is the caller-supplied input of one scaffolding run.
type Request struct {
	Name           string `json:"name" validate:"required"`
	DisplayName    string `json:"display_name" validate:"required"`
	Author         string `json:"author" validate:"required"`
	Email          string `json:"email,omitempty"`
	GitHubUsername string `json:"githubUsername,omitempty"`
}

// Result is the success response of one scaffolding run. Manifest is the
// authoritative echo re-read from disk, not the in-memory value.
type Result struct {
	Path     string              `json:"path"`
	Manifest *extension.Manifest `json:"manifestData"`
}

// Scaffolder creates extension directories under a fixed extensions root,
// populating them from a fixed templates root.
type Scaffolder struct {
	extensionsRoot string
	materializer   *extension.Materializer
}

// New creates a Scaffolder. Neither root is created here; the hosting
// environment supplies both at startup.
func New(extensionsRoot, templatesDir string) *Scaffolder {
	return &Scaffolder{
		extensionsRoot: extensionsRoot,
		materializer:   extension.NewMaterializer(templatesDir),
	}
}

var validate = newRequestValidator()

// newRequestValidator builds a validator that reports field names by their
// JSON tag, so validation errors name the field the caller actually sent.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Create runs the scaffolding pipeline for one request. All gates run before
// any filesystem mutation; once the directory exists, a failing step removes
// it again so no partially constructed extension is left behind.
func (s *Scaffolder) Create(caller core.CallerIdentity, req Request) (*Result, error) {
	if !caller.Privileged {
		return nil, core.ErrForbidden
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return nil, core.NewValidationError(fieldErrors[0].Field(), "is required")
		}
		return nil, core.NewValidationError("request", err.Error())
	}

	leaf := extension.SanitizeName(req.Name)
	if leaf == "" {
		return nil, core.NewValidationError("name", "contains no allowed characters")
	}

	var coords *extension.GitHubCoordinates
	if req.GitHubUsername != "" {
		c := extension.GitHubCoordinates{Username: req.GitHubUsername, Repository: leaf}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		coords = &c
	}

	dir := filepath.Join(s.extensionsRoot, leaf)
	if _, err := os.Stat(dir); err == nil {
		return nil, core.NewConflictError(leaf)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to check for existing extension %s: %w", leaf, err)
	}

	// Two concurrent requests for the same name race between the check above
	// and this Mkdir. The filesystem's own atomicity decides the winner; the
	// loser surfaces the already-exists error as an internal failure.
	if err := os.Mkdir(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create extension directory: %w", err)
	}

	subs := extension.Substitutions{
		GitHubUsername: req.GitHubUsername,
		ExtensionName:  leaf,
	}
	if err := s.materializer.Materialize(dir, subs); err != nil {
		s.cleanup(dir, leaf)
		return nil, fmt.Errorf("failed to materialize skeleton: %w", err)
	}

	manifest := extension.BuildManifest(extension.ManifestParams{
		DisplayName: req.DisplayName,
		Author:      req.Author,
		Email:       req.Email,
		Coordinates: coords,
	})
	if err := extension.WriteManifest(dir, manifest); err != nil {
		s.cleanup(dir, leaf)
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := gitrepo.Initialize(dir, req.Author, req.Email); err != nil {
		s.cleanup(dir, leaf)
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	// Re-read the just-written manifest so the caller receives the
	// authoritative on-disk record. The directory is complete at this point,
	// so a read failure reports an error without removing it.
	reread, err := extension.LoadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read manifest: %w", err)
	}

	zap.L().Info("Extension scaffolded",
		zap.String("extension", leaf),
		zap.String("path", dir),
		zap.String("caller", caller.Handle))

	return &Result{Path: dir, Manifest: reread}, nil
}

// cleanup removes a partially constructed extension directory, best effort.
func (s *Scaffolder) cleanup(dir, leaf string) {
	if err := os.RemoveAll(dir); err != nil {
		zap.L().Error("Failed to remove partially scaffolded extension",
			zap.String("extension", leaf),
			zap.String("path", dir),
			zap.Error(err))
		return
	}
	zap.L().Warn("Removed partially scaffolded extension",
		zap.String("extension", leaf),
		zap.String("path", dir))
}
