package extension

import (
	"fmt"
	"strings"

	"github.com/extforge/extforge/internal/core"
)

// Skeleton file names, identical in the templates root and the target directory
const (
	LicenseFileName    = "LICENSE"
	EntrypointFileName = "index.js"
	ReadmeFileName     = "README.md"
)

// README placeholder tokens
const (
	TokenGitHubUsername = "{{github_username}}"
	TokenExtensionName  = "{{extension_name}}"

	// FallbackUsername replaces the username token when the caller supplied
	// no GitHub username.
	FallbackUsername = "your-username"
)

// Substitutions are the values filled into the README template.
type Substitutions struct {
	GitHubUsername string // empty means FallbackUsername
	ExtensionName  string // the sanitized directory leaf
}

// Materializer populates target directories with the skeleton files kept
// under a read-only templates root.
type Materializer struct {
	templatesDir string
}

// NewMaterializer creates a Materializer reading from the given templates root
func NewMaterializer(templatesDir string) *Materializer {
	return &Materializer{templatesDir: templatesDir}
}

// Materialize copies the license and entry-point script into targetDir
// verbatim, then renders the README template with both tokens substituted.
// Any missing source template or failed write is fatal; partially written
// files are left for the caller to clean up.
func (m *Materializer) Materialize(targetDir string, subs Substitutions) error {
	for _, name := range []string{LicenseFileName, EntrypointFileName} {
		if err := m.copyTemplate(targetDir, name); err != nil {
			return err
		}
	}

	readme, err := core.ReadFileUnder(m.templatesDir, ReadmeFileName)
	if err != nil {
		return fmt.Errorf("failed to read README template: %w", err)
	}

	username := subs.GitHubUsername
	if username == "" {
		username = FallbackUsername
	}

	rendered := strings.ReplaceAll(string(readme), TokenGitHubUsername, username)
	rendered = strings.ReplaceAll(rendered, TokenExtensionName, subs.ExtensionName)

	if err := core.WriteFileUnder(targetDir, ReadmeFileName, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}

	return nil
}

// copyTemplate copies one skeleton file verbatim from the templates root.
func (m *Materializer) copyTemplate(targetDir, name string) error {
	data, err := core.ReadFileUnder(m.templatesDir, name)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", name, err)
	}
	if err := core.WriteFileUnder(targetDir, name, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
