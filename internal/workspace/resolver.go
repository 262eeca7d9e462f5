// Package workspace derives project, workspace, and branch labels from a
// process's working directory.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/wesoudshoorn/locohost/pkg/model"
)

// workspacesSegment marks a managed checkout: a path shaped like
// .../<namespace>/workspaces/<workspace>/<project>/... belongs to the
// workspace tool, and the two segments after it name the workspace and
// the project checkout.
const workspacesSegment = "workspaces"

// Resolver turns a pid into workspace metadata. The working-directory
// lookup is injected so tests can run without a live /proc or lsof.
type Resolver struct {
	workingDir func(ctx context.Context, pid int) string
}

func NewResolver(workingDir func(ctx context.Context, pid int) string) *Resolver {
	return &Resolver{workingDir: workingDir}
}

// Resolve is best-effort at every step: an undiscoverable working
// directory leaves everything blank, and a missing repo or unmatched path
// only blanks the fields it would have filled.
func (r *Resolver) Resolve(ctx context.Context, pid int) model.WorkspaceMeta {
	cwd := r.workingDir(ctx, pid)
	if cwd == "" {
		return model.WorkspaceMeta{}
	}

	meta := model.WorkspaceMeta{WorkingDir: cwd}
	meta.Workspace, meta.Project = splitWorkspacePath(cwd)
	meta.Branch = stripBranchOwner(gitBranch(cwd))
	return meta
}

// splitWorkspacePath extracts (workspace, project) from a managed-checkout
// path, or ("", lastSegment) for any other directory.
func splitWorkspacePath(path string) (workspace, project string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == workspacesSegment && i+2 < len(segments) {
			return segments[i+1], segments[i+2]
		}
	}
	if len(segments) > 0 {
		project = segments[len(segments)-1]
	}
	return "", project
}

// stripBranchOwner removes a "user/" prefix from a branch name. Everything
// after the first slash is kept, so "alice/feat/sub" becomes "feat/sub".
func stripBranchOwner(branch string) string {
	if i := strings.Index(branch, "/"); i >= 0 {
		return branch[i+1:]
	}
	return branch
}

// gitBranch walks up from dir looking for a .git entry and reads the
// current ref out of HEAD. Worktree checkouts keep a .git file pointing at
// the real git dir; both shapes are handled. Returns "" for detached HEAD
// or anything that isn't a repo.
func gitBranch(dir string) string {
	for dir != "/" && dir != "." && dir != "" {
		gitPath := filepath.Join(dir, ".git")
		if fi, err := os.Stat(gitPath); err == nil {
			gitDir := gitPath
			if !fi.IsDir() {
				gitDir = readGitDirPointer(gitPath, dir)
				if gitDir == "" {
					return ""
				}
			}
			head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
			if err != nil {
				return ""
			}
			ref := strings.TrimSpace(string(head))
			if !strings.HasPrefix(ref, "ref: ") {
				return ""
			}
			return strings.TrimPrefix(strings.TrimPrefix(ref, "ref: "), "refs/heads/")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// readGitDirPointer resolves a worktree's .git file ("gitdir: <path>").
func readGitDirPointer(gitFile, dir string) string {
	data, err := os.ReadFile(gitFile)
	if err != nil {
		return ""
	}
	target := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "gitdir:"))
	if target == "" {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return target
}
