// Package discovery finds candidate entrants on disk and performs the file
// operations the judge can request mid-run: rename (plain and wildcard) and
// move-to-trash. The core engine never touches the filesystem itself.
package discovery

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// trashDir is where removed files are parked instead of being deleted.
const trashDir = ".trash"

// Scanner lists files in a single directory level that match a pattern.
type Scanner struct {
	dir     string
	pattern *regexp.Regexp
	skip    map[string]struct{}
}

// NewScanner builds a Scanner over dir. Names in skip (e.g. the database
// file) are never reported.
func NewScanner(dir string, pattern *regexp.Regexp, skip ...string) *Scanner {
	s := &Scanner{
		dir:     dir,
		pattern: pattern,
		skip:    make(map[string]struct{}, len(skip)),
	}
	for _, name := range skip {
		s.skip[name] = struct{}{}
	}
	return s
}

// Scan returns the deduplicated set of matching filenames. Directories,
// hidden files, and skip-listed names are excluded.
func (s *Scanner) Scan() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, skipped := s.skip[name]; skipped {
			continue
		}
		if s.pattern != nil && !s.pattern.MatchString(name) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

// Exists reports whether the named file is still present in the directory.
func (s *Scanner) Exists(name string) bool {
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && !info.IsDir()
}

// Matches reports whether the name passes the scanner's pattern.
func (s *Scanner) Matches(name string) bool {
	return s.pattern == nil || s.pattern.MatchString(name)
}

// Open hands the named files to the platform's default opener.
func (s *Scanner) Open(names ...string) error {
	for _, name := range names {
		if err := exec.Command(openCommand(), filepath.Join(s.dir, name)).Start(); err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
	}
	return nil
}

func openCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

// ExtensionsPattern compiles a comma-separated extension list ("py,js" or
// ".py,.js") into an anchored filename regexp. An empty list matches
// everything.
func ExtensionsPattern(extensions string) (*regexp.Regexp, error) {
	var exts []string
	for _, e := range strings.Split(extensions, ",") {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			exts = append(exts, regexp.QuoteMeta(e))
		}
	}

	switch len(exts) {
	case 0:
		return regexp.Compile(`.*`)
	case 1:
		return regexp.Compile(`.*\.` + exts[0] + `$`)
	default:
		return regexp.Compile(`.*\.(` + strings.Join(exts, "|") + `)$`)
	}
}

// Trash moves the file into the trash subdirectory, suffixing the name with
// a timestamp so repeated removals never collide. Returns the new location.
func (s *Scanner) Trash(name string, now time.Time) (string, error) {
	src := filepath.Join(s.dir, name)
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("trash %s: %w", name, err)
	}

	dst := filepath.Join(s.dir, trashDir)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", fmt.Errorf("trash %s: %w", name, err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	target := filepath.Join(dst, fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), ext))

	if err := os.Rename(src, target); err != nil {
		return "", fmt.Errorf("trash %s: %w", name, err)
	}
	return target, nil
}

// Rename renames a file within the directory.
func (s *Scanner) Rename(oldName, newName string) error {
	if err := os.Rename(filepath.Join(s.dir, oldName), filepath.Join(s.dir, newName)); err != nil {
		return fmt.Errorf("rename %s: %w", oldName, err)
	}
	return nil
}

// ExpandWildcard resolves a single-'*' rename pattern pair against the
// directory contents, returning (old, new) name pairs for every match.
func (s *Scanner) ExpandWildcard(oldPattern, newPattern string) ([][2]string, error) {
	if strings.Count(oldPattern, "*") != 1 || strings.Count(newPattern, "*") != 1 {
		return nil, fmt.Errorf("rename patterns must contain exactly one *: %q -> %q", oldPattern, newPattern)
	}

	prefix, suffix, _ := strings.Cut(oldPattern, "*")

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", oldPattern, err)
	}

	var pairs [][2]string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		if len(name) < len(prefix)+len(suffix) {
			continue
		}
		matched := name[len(prefix) : len(name)-len(suffix)]
		pairs = append(pairs, [2]string{name, strings.Replace(newPattern, "*", matched, 1)})
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no files match pattern %q", oldPattern)
	}
	return pairs, nil
}
