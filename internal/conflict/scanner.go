package conflict

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

// Scanner extracts the files a source file statically references. Scanning is
// best-effort: a file that does not exist yet, uses unsupported syntax, or
// fails to parse yields no references rather than an error. Results are cached
// keyed by a content hash, so the scanner is deterministic for fixed file
// contents.
type Scanner struct {
	root string

	mu         sync.Mutex
	modulePath string
	moduleOnce sync.Once
	cache      map[string]cacheEntry
}

type cacheEntry struct {
	hash     string
	refs     []string
	resolved bool
}

// NewScanner creates a scanner rooted at the project directory.
func NewScanner(root string) *Scanner {
	return &Scanner{
		root:  root,
		cache: make(map[string]cacheEntry),
	}
}

// relativeImportPattern matches relative imports in JS/TS and Python source.
var relativeImportPattern = regexp.MustCompile(`(?m)(?:from\s+|require\s*\(\s*|import\s+)['"](\.{1,2}/[^'"]+)['"]`)

// Scan returns the project-relative paths referenced by the file at relPath.
// Referenced directories (Go package imports) are returned as directory paths
// ending in "/". The second return reports whether the file's imports could
// be determined: a missing file resolves trivially (nothing exists to
// reference), while a parse failure or unsupported syntax reports false so
// the conservative analyzer mode can treat the footprint as uncertain.
func (s *Scanner) Scan(relPath string) ([]string, bool) {
	abs := filepath.Join(s.root, relPath)
	data, err := os.ReadFile(abs)
	if err != nil {
		// File does not exist yet (e.g. action: create). No extractable refs.
		return nil, true
	}

	sum := blake3.Sum256(data)
	hash := fmt.Sprintf("%x", sum[:])

	s.mu.Lock()
	if entry, ok := s.cache[relPath]; ok && entry.hash == hash {
		s.mu.Unlock()
		return entry.refs, entry.resolved
	}
	s.mu.Unlock()

	var refs []string
	resolved := true
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".go":
		refs, resolved = s.scanGo(relPath, data)
	case ".js", ".jsx", ".ts", ".tsx", ".mjs", ".py":
		refs = s.scanRelative(relPath, data)
	default:
		// Unsupported syntax: no extractable imports, flagged as such.
		resolved = false
	}

	s.mu.Lock()
	s.cache[relPath] = cacheEntry{hash: hash, refs: refs, resolved: resolved}
	s.mu.Unlock()
	return refs, resolved
}

// scanGo parses import declarations and resolves module-internal imports to
// package directories.
func (s *Scanner) scanGo(relPath string, data []byte) ([]string, bool) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, relPath, data, parser.ImportsOnly)
	if err != nil {
		return nil, false
	}

	module := s.loadModulePath()
	if module == "" {
		return nil, true
	}

	var refs []string
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		if rest, ok := strings.CutPrefix(path, module+"/"); ok {
			refs = append(refs, rest+"/")
		}
	}
	return refs, true
}

// scanRelative resolves relative import specifiers against the file's
// directory. Specifiers without an extension are tried against common source
// extensions; unresolvable specifiers keep the bare resolved path.
func (s *Scanner) scanRelative(relPath string, data []byte) []string {
	dir := filepath.Dir(relPath)
	matches := relativeImportPattern.FindAllStringSubmatch(string(data), -1)

	var refs []string
	for _, m := range matches {
		resolved := filepath.ToSlash(filepath.Clean(filepath.Join(dir, m[1])))
		if strings.HasPrefix(resolved, "..") {
			// Escapes the project root; not a project file.
			continue
		}
		refs = append(refs, s.resolveExtension(resolved))
	}
	return refs
}

func (s *Scanner) resolveExtension(path string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".py"} {
		if _, err := os.Stat(filepath.Join(s.root, path+ext)); err == nil {
			return path + ext
		}
	}
	// A directory import pulls in the whole directory.
	if info, err := os.Stat(filepath.Join(s.root, path)); err == nil && info.IsDir() {
		return path + "/"
	}
	return path
}

// loadModulePath reads the module directive from go.mod at the root, once.
func (s *Scanner) loadModulePath() string {
	s.moduleOnce.Do(func() {
		data, err := os.ReadFile(filepath.Join(s.root, "go.mod"))
		if err != nil {
			return
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if rest, ok := strings.CutPrefix(line, "module "); ok {
				s.modulePath = strings.TrimSpace(rest)
				return
			}
		}
	})
	return s.modulePath
}
