package resolver

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/pattern"
)

// globMode mirrors what a POSIX shell does when expanding an unquoted word:
// wildcards never cross a slash and "**" is an ordinary "*". Braces and extglob
// groups are not pattern syntax here, so they only ever match themselves.
const globMode = pattern.Filenames | pattern.EntireString | pattern.NoGlobStar

// HasMagic reports whether source contains unescaped glob metacharacters.
func HasMagic(source string) bool {
	return pattern.HasMeta(toSlash(source), 0)
}

// Glob expands pat against cwd and returns the matches relative to cwd, or
// absolute when pat is absolute. Matches within a directory are sorted
// lexically. Hidden names are only matched by a pattern segment that starts
// with a dot.
func Glob(fs afero.Fs, pat, cwd string) ([]string, error) {
	pat = toSlash(pat)
	dirsOnly := strings.HasSuffix(pat, "/")

	var segments []string
	for _, seg := range strings.Split(pat, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	root := ""
	if path.IsAbs(pat) {
		root = "/"
	}

	matches := []string{root}
	for i, seg := range segments {
		last := i == len(segments)-1

		var next []string
		re, isPattern := compileSegment(seg)
		if !isPattern {
			lit := unescape(seg)
			for _, base := range matches {
				candidate := joinMatch(base, lit)
				info, err := fs.Stat(fullPath(cwd, candidate))
				if err != nil {
					continue
				}
				if !last && !info.IsDir() {
					continue
				}
				next = append(next, candidate)
			}
			matches = next
			continue
		}

		explicitDot := strings.HasPrefix(seg, ".")

		for _, base := range matches {
			infos, err := afero.ReadDir(fs, fullPath(cwd, base))
			if err != nil {
				if errors.Is(err, os.ErrNotExist) || isNotDir(fs, fullPath(cwd, base)) {
					continue
				}
				return nil, fmt.Errorf("failed to read directory %s: %w", fullPath(cwd, base), err)
			}
			for _, info := range infos {
				name := info.Name()
				if strings.HasPrefix(name, ".") && !explicitDot {
					continue
				}
				if !re.MatchString(name) {
					continue
				}
				candidate := joinMatch(base, name)
				if (!last || dirsOnly) && !isDir(fs, fullPath(cwd, candidate), info) {
					continue
				}
				next = append(next, candidate)
			}
		}
		matches = next
	}

	if len(segments) == 0 {
		return nil, nil
	}

	if dirsOnly {
		var dirs []string
		for _, m := range matches {
			if info, err := fs.Stat(fullPath(cwd, m)); err == nil && info.IsDir() {
				dirs = append(dirs, m)
			}
		}
		matches = dirs
	}

	return matches, nil
}

// compileSegment returns the matcher for a single path segment. Segments
// without metacharacters, or that are not valid patterns (like an unclosed
// "["), are matched literally as a shell would.
func compileSegment(seg string) (*regexp.Regexp, bool) {
	if !pattern.HasMeta(seg, 0) {
		return nil, false
	}
	expr, err := pattern.Regexp(seg, globMode)
	if err != nil {
		return nil, false
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, false
	}
	return re, true
}

func joinMatch(base, name string) string {
	if base == "" {
		return name
	}
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}

func fullPath(cwd, match string) string {
	p := filepath.FromSlash(match)
	if match == "" {
		return cwd
	}
	if filepath.IsAbs(p) || path.IsAbs(match) {
		return p
	}
	return filepath.Join(cwd, p)
}

// isDir follows symlinks, which directory listings report unresolved.
func isDir(fs afero.Fs, full string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink == 0 {
		return info.IsDir()
	}
	target, err := fs.Stat(full)
	if err != nil {
		return false
	}
	return target.IsDir()
}

func isNotDir(fs afero.Fs, full string) bool {
	info, err := fs.Stat(full)
	return err == nil && !info.IsDir()
}

func unescape(seg string) string {
	if !strings.Contains(seg, `\`) {
		return seg
	}
	var sb strings.Builder
	for i := 0; i < len(seg); i++ {
		if seg[i] == '\\' && i+1 < len(seg) {
			i++
		}
		sb.WriteByte(seg[i])
	}
	return sb.String()
}

func toSlash(p string) string {
	if filepath.Separator == '/' {
		return p
	}
	return filepath.ToSlash(p)
}
