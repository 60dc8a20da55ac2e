package tools

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a path resolves outside its sandbox root.
var ErrPathTraversal = errors.New("path traversal not allowed")

// Roots are the directories one stage's tools may touch. Reads of project
// files stay under Input, reads of the reference template stay under
// Template, and every write stays under Output. A Roots value is built per
// stage and never changed afterwards.
type Roots struct {
	Input    string
	Template string
	Output   string
}

// Resolve joins rel onto root and returns the absolute path, or
// ErrPathTraversal when the result is not root itself or a descendant of it.
// Symlinks in the existing part of either path are followed before the
// comparison, and the comparison is made on whole path segments.
func Resolve(root, rel string) (string, error) {
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", ErrPathTraversal
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(absRoot, filepath.FromSlash(rel))

	realRoot, ok := canonical(absRoot)
	if !ok {
		return "", ErrPathTraversal
	}
	realTarget, ok := canonical(target)
	if !ok || !within(realRoot, realTarget) {
		return "", ErrPathTraversal
	}
	return target, nil
}

// within reports whether target equals root or lies below it.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// maxSymlinkHops bounds how many dangling links canonical follows.
const maxSymlinkHops = 40

// canonical resolves symlinks in the longest existing prefix of an absolute
// path and re-attaches the part that does not exist yet. A dangling symlink
// on the way is expanded through its target, since writing through it
// creates the target. It reports false when a link cannot be read or the
// chain is too long.
func canonical(path string) (string, bool) {
	return canonicalHops(path, 0)
}

func canonicalHops(path string, hops int) (string, bool) {
	path = filepath.Clean(path)
	var rest []string
	cur := path
	for {
		if real, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(append([]string{real}, rest...)...), true
		}

		if info, err := os.Lstat(cur); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			if hops >= maxSymlinkHops {
				return "", false
			}
			link, err := os.Readlink(cur)
			if err != nil {
				return "", false
			}
			if !filepath.IsAbs(link) {
				link = filepath.Join(filepath.Dir(cur), link)
			}
			return canonicalHops(filepath.Join(append([]string{link}, rest...)...), hops+1)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return path, true
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}
