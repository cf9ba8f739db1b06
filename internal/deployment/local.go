package deployment

import (
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// DefaultUserBranch returns the branch a local run writes to:
// "user.<identity>".
// Identity priority: git global user.name, then $USER, then "local".
func DefaultUserBranch() string {
	return "user." + localIdentity()
}

func localIdentity() string {
	cfg, err := config.LoadConfig(config.GlobalScope)
	if err == nil && cfg.User.Name != "" {
		name := strings.ToLower(cfg.User.Name)
		name = strings.ReplaceAll(name, " ", "_")
		return sanitizeIdentity(name)
	}

	if user := os.Getenv("USER"); user != "" {
		return sanitizeIdentity(strings.ToLower(user))
	}

	return "local"
}

// sanitizeIdentity keeps only characters that survive branch sanitization
// unchanged, so "user.<identity>" round-trips into storage paths cleanly.
func sanitizeIdentity(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "local"
	}
	return result.String()
}

// DetectGitBranch returns the current git branch of the repository at
// path. It returns "" when the path is not a repository, the repository
// has no HEAD yet, or HEAD is detached.
func DetectGitBranch(path string) string {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}
