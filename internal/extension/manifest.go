package extension

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"

	"github.com/extforge/extforge/internal/core"
)

// ManifestFileName is the name of the metadata file inside every extension directory
const ManifestFileName = "manifest.json"

// Fixed manifest policy values for newly scaffolded extensions
const (
	InitialVersion     = "1.0.0"
	DefaultDescription = "A newly scaffolded extension."
	DefaultLicense     = "MIT"
	DefaultLoadOrder   = 0
)

// Manifest is the structured metadata record describing one extension.
type Manifest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Version     string `json:"version" validate:"required"`
	Description string `json:"description"`
	Author      string `json:"author" validate:"required"`
	License     string `json:"license"`
	LoadOrder   int    `json:"load_order"`
	Homepage    string `json:"homepage,omitempty"`
}

// ManifestParams are the caller-supplied inputs to BuildManifest.
type ManifestParams struct {
	DisplayName string
	Author      string
	Email       string             // optional; folded into the author field when present
	Coordinates *GitHubCoordinates // optional; must already be validated
}

// BuildManifest constructs a manifest from caller-supplied fields and the
// fixed version/description/license/load-order policy. Deterministic, no I/O.
// The homepage field is included only when GitHub coordinates are supplied;
// it is omitted entirely otherwise, not present-but-empty.
func BuildManifest(params ManifestParams) *Manifest {
	author := params.Author
	if params.Email != "" {
		author = fmt.Sprintf("%s <%s>", params.Author, params.Email)
	}

	manifest := &Manifest{
		DisplayName: params.DisplayName,
		Version:     InitialVersion,
		Description: DefaultDescription,
		Author:      author,
		License:     DefaultLicense,
		LoadOrder:   DefaultLoadOrder,
	}

	if params.Coordinates != nil {
		manifest.Homepage = params.Coordinates.HomepageURL()
	}

	return manifest
}

// Marshal serializes the manifest to indented JSON with a trailing newline.
// Serialization is deterministic: identical manifests yield identical bytes.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

var validate = validator.New()

// ValidateManifest validates the required fields and version format of a manifest
func ValidateManifest(manifest *Manifest) error {
	if err := validate.Struct(manifest); err != nil {
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if !semver.IsValid("v" + manifest.Version) {
		return fmt.Errorf("manifest version %q is not a valid semantic version", manifest.Version)
	}

	return nil
}

// WriteManifest serializes the manifest into dir/manifest.json.
func WriteManifest(dir string, manifest *Manifest) error {
	data, err := manifest.Marshal()
	if err != nil {
		return err
	}
	return core.WriteFileUnder(dir, ManifestFileName, data, 0644)
}

// LoadManifest loads, parses, and validates a manifest.json from the given
// extension directory. A manifest that parses but fails validation is
// rejected here so no consumer serves malformed metadata.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := core.ReadFileUnder(dir, ManifestFileName)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFileName, err)
	}

	if err := ValidateManifest(&manifest); err != nil {
		return nil, err
	}

	return &manifest, nil
}
