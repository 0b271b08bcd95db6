package photosync

import (
	"fmt"
	"os/exec"
)

// GitPublisher commits the site artifacts and pushes them to a branch on
// a token-authenticated GitHub remote.
type GitPublisher struct {
	Token  string
	Repo   string // "owner/repo"
	Branch string // e.g. "gh-pages"
}

// Publish stages the given paths, commits, and pushes. A failed push is
// returned to the caller; the next cycle retries.
func (g *GitPublisher) Publish(msg string, paths []string) error {
	args := append([]string{"add"}, paths...)
	if err := gitCmd(args...); err != nil {
		return err
	}

	if err := gitCmd("-c", "user.email=actions@localhost", "-c", "user.name=photo-sync-bot",
		"commit", "-m", msg); err != nil {
		return err
	}

	remoteURL := fmt.Sprintf("https://%s@github.com/%s.git", g.Token, g.Repo)
	if err := gitCmd("remote", "set-url", "origin", remoteURL); err != nil {
		if err := gitCmd("remote", "add", "origin", remoteURL); err != nil {
			return err
		}
	}

	return gitCmd("push", "origin", "HEAD:"+g.Branch)
}

func gitCmd(args ...string) error {
	cmd := exec.Command("git", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, out)
	}
	return nil
}
