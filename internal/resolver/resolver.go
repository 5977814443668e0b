package resolver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls how inputs are resolved.
type Options struct {
	// CacheDir holds cloned repositories. Defaults to ~/.cache/abslens/repos.
	CacheDir string
	// Download runs "go mod download" in the module root before analysis.
	Download bool
}

// Resolve takes a local directory or a GitHub URL and returns the module root
// to analyze, plus a cleanup function.
func Resolve(ctx context.Context, input string, opts Options, logger *slog.Logger) (dir string, cleanup func(), err error) {
	cleanup = func() {}
	logger = logger.With("component", "resolver")

	if isGitHubURL(input) {
		dir, err = fetchRepo(ctx, input, opts, logger)
		return dir, cleanup, err
	}

	absPath, err := filepath.Abs(input)
	if err != nil {
		return "", cleanup, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", cleanup, fmt.Errorf("stat %s: %w", absPath, err)
	}
	if !info.IsDir() {
		return "", cleanup, fmt.Errorf("%s is not a directory", absPath)
	}

	modRoot, err := findModuleRoot(absPath)
	if err != nil {
		return "", cleanup, err
	}

	logger.Info("resolved local directory", "input", input, "module_root", modRoot)
	download(ctx, modRoot, opts, logger)
	return modRoot, cleanup, nil
}

func isGitHubURL(input string) bool {
	return strings.Contains(input, "github.com") &&
		(strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"))
}

// cacheDir returns a stable clone directory derived from the URL.
func cacheDir(url string, opts Options) (string, error) {
	base := opts.CacheDir
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home dir: %w", err)
		}
		base = filepath.Join(home, ".cache", "abslens", "repos")
	}
	h := sha256.Sum256([]byte(url))
	return filepath.Join(base, fmt.Sprintf("%x", h[:8])), nil
}

// fetchRepo updates a cached clone, or clones fresh when there is none or the
// update fails. The cache is kept between runs.
func fetchRepo(ctx context.Context, url string, opts Options, logger *slog.Logger) (string, error) {
	dir, err := cacheDir(url, opts)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return cloneRepo(ctx, url, dir, opts, logger)
	}

	logger.Info("updating cached repository", "url", url, "dir", dir)
	for _, args := range [][]string{
		{"fetch", "--depth=1", "origin"},
		{"reset", "--hard", "origin/HEAD"},
	} {
		if err := git(ctx, dir, args...); err != nil {
			logger.Warn("git update failed, will re-clone", "command", args[0], "error", err)
			_ = os.RemoveAll(dir)
			return cloneRepo(ctx, url, dir, opts, logger)
		}
	}

	modRoot, err := findModuleRootInTree(dir)
	if err != nil {
		return "", fmt.Errorf("cached repo: %w", err)
	}
	logger.Info("found module root", "module_root", modRoot)
	download(ctx, modRoot, opts, logger)
	return modRoot, nil
}

func cloneRepo(ctx context.Context, url, dir string, opts Options, logger *slog.Logger) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	logger.Info("cloning repository", "url", url, "dest", dir)
	if err := git(ctx, "", "clone", "--depth=1", url, dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("git clone: %w", err)
	}

	modRoot, err := findModuleRootInTree(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("cloned repo: %w", err)
	}
	logger.Info("found module root", "module_root", modRoot)
	download(ctx, modRoot, opts, logger)
	return modRoot, nil
}

func git(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// findModuleRoot walks up from dir to the nearest directory with a go.mod.
func findModuleRoot(dir string) (string, error) {
	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no go.mod found in %s or any parent directory", dir)
		}
		current = parent
	}
}

// findModuleRootInTree returns the shallowest directory under root holding a
// go.mod. Ties at the same depth go to the alphabetically first path.
// Hidden directories, vendor and node_modules are skipped.
func findModuleRootInTree(root string) (string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == "go.mod" {
			found = append(found, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no go.mod found in %s", root)
	}

	depth := func(p string) int { return strings.Count(p, string(filepath.Separator)) }
	sort.Slice(found, func(i, j int) bool {
		if di, dj := depth(found[i]), depth(found[j]); di != dj {
			return di < dj
		}
		return found[i] < found[j]
	})
	return found[0], nil
}

func download(ctx context.Context, dir string, opts Options, logger *slog.Logger) {
	if !opts.Download {
		return
	}
	logger.Debug("running go mod download", "dir", dir)
	cmd := exec.CommandContext(ctx, "go", "mod", "download")
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		logger.Warn("go mod download failed", "error", err)
	}
}
