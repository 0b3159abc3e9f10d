package extension

import (
	"fmt"
	"regexp"

	"github.com/extforge/extforge/internal/core"
)

// GitHub identifier limits
const (
	MaxGitHubUsernameLength   = 39
	MaxGitHubRepositoryLength = 100
)

// gitHubIdentifierPattern is the restricted character set shared by GitHub
// usernames and repository names.
var gitHubIdentifierPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// GitHubCoordinates is a (username, repository-name) pair used to build the
// manifest homepage URL and the README substitution.
type GitHubCoordinates struct {
	Username   string `json:"username"`
	Repository string `json:"repository"`
}

// Validate checks both identifiers against the restricted character set and
// the GitHub length limits. It returns a ValidationError naming the field
// and the violated rule.
func (c GitHubCoordinates) Validate() error {
	if c.Username == "" {
		return core.NewValidationError("githubUsername", "must not be empty")
	}
	if len(c.Username) > MaxGitHubUsernameLength {
		return core.NewValidationError("githubUsername",
			fmt.Sprintf("must be at most %d characters", MaxGitHubUsernameLength))
	}
	if !gitHubIdentifierPattern.MatchString(c.Username) {
		return core.NewValidationError("githubUsername",
			"may only contain letters, digits, hyphens, dots, and underscores")
	}

	if c.Repository == "" {
		return core.NewValidationError("repository", "must not be empty")
	}
	if len(c.Repository) > MaxGitHubRepositoryLength {
		return core.NewValidationError("repository",
			fmt.Sprintf("must be at most %d characters", MaxGitHubRepositoryLength))
	}
	if !gitHubIdentifierPattern.MatchString(c.Repository) {
		return core.NewValidationError("repository",
			"may only contain letters, digits, hyphens, dots, and underscores")
	}

	return nil
}

// HomepageURL builds the homepage link for a scaffolded extension.
func (c GitHubCoordinates) HomepageURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", c.Username, c.Repository)
}
