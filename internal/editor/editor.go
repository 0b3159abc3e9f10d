// Package editor validates and launches external editors on extension entry
// files.
package editor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/extforge/extforge/internal/core"
	"github.com/extforge/extforge/internal/extension"
)

// Launcher resolves an editor selector against a fixed allow-list and opens
// an extension's entry file with it.
type Launcher struct {
	extensionsRoot string
	editors        []string // configured order, echoed by GET /editors
	allowed        mapset.Set[string]
	defaultEditor  string
	processes      *core.Launcher
}

// New creates a Launcher. The editors slice keeps its configured order; the
// selector check itself is a set membership test.
func New(extensionsRoot string, editors []string, defaultEditor string, processes *core.Launcher) *Launcher {
	return &Launcher{
		extensionsRoot: extensionsRoot,
		editors:        editors,
		allowed:        mapset.NewSet(editors...),
		defaultEditor:  defaultEditor,
		processes:      processes,
	}
}

// Editors returns the allow-list in configured order.
func (l *Launcher) Editors() []string {
	out := make([]string, len(l.editors))
	copy(out, l.editors)
	return out
}

// Open validates the selector and extension name, resolves the extension's
// index.js, and launches the editor on it, waiting for the launch to
// complete. An empty selector falls back to the configured default editor.
func (l *Launcher) Open(ctx context.Context, editorName, extensionName string) error {
	if editorName == "" {
		editorName = l.defaultEditor
	}

	if !l.allowed.Contains(editorName) {
		reason := fmt.Sprintf("must be one of: %s", strings.Join(l.editors, ", "))
		if suggestion := suggestSimilar(editorName, l.editors); suggestion != "" {
			reason = fmt.Sprintf("%s (did you mean %q?)", reason, suggestion)
		}
		return core.NewValidationError("editor", reason)
	}

	if extensionName == "" {
		return core.NewValidationError("extensionName", "is required")
	}

	installed, err := extension.ListDirs(l.extensionsRoot)
	if err != nil {
		return fmt.Errorf("failed to list extensions: %w", err)
	}

	if !mapset.NewSet(installed...).Contains(extensionName) {
		resource := fmt.Sprintf("extension %q", extensionName)
		if suggestion := suggestSimilar(extensionName, installed); suggestion != "" {
			resource = fmt.Sprintf("%s (did you mean %q?)", resource, suggestion)
		}
		return core.NewNotFoundError(resource)
	}

	entry := filepath.Join(extensionName, extension.EntrypointFileName)
	if _, err := core.StatUnder(l.extensionsRoot, entry); err != nil {
		return core.NewNotFoundError(fmt.Sprintf("entry file %s of extension %q", extension.EntrypointFileName, extensionName))
	}

	entryPath := filepath.Join(l.extensionsRoot, entry)
	result, err := l.processes.Launch(ctx, editorName, []string{entryPath})
	if err != nil {
		return &core.ProcessError{Program: editorName, Details: launchDetails(result), Err: err}
	}
	if result.ExitCode != 0 {
		return &core.ProcessError{
			Program: editorName,
			Details: launchDetails(result),
			Err:     fmt.Errorf("exited with code %d", result.ExitCode),
		}
	}

	zap.L().Info("Editor launched",
		zap.String("editor", editorName),
		zap.String("extension", extensionName),
		zap.String("entry", entryPath))

	return nil
}

// launchDetails extracts the diagnostic text from a launch result, if any.
func launchDetails(result *core.LaunchResult) string {
	if result == nil {
		return ""
	}
	return strings.TrimSpace(result.Stderr)
}

// suggestSimilar finds the closest candidate for typo detection using
// Levenshtein distance. Only distances of at most 2 are considered.
func suggestSimilar(name string, candidates []string) string {
	var best string
	bestDistance := 3

	nameLower := strings.ToLower(name)
	for _, candidate := range candidates {
		distance := levenshtein.ComputeDistance(nameLower, strings.ToLower(candidate))
		if distance < bestDistance {
			bestDistance = distance
			best = candidate
		}
	}

	return best
}
