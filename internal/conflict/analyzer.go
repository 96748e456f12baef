package conflict

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
)

// Mode selects how the analyzer treats footprints whose imports could not be
// determined.
type Mode int

const (
	// ModePermissive assumes no closure for unresolvable files. False
	// negatives (over-parallelizing) are accepted; a task is never dropped.
	ModePermissive Mode = iota
	// ModeConservative treats a task with any unresolvable declared file as
	// conflicting with every other task.
	ModeConservative
)

// ParseMode parses a mode string from configuration.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "permissive":
		return ModePermissive, true
	case "conservative":
		return ModeConservative, true
	default:
		return ModePermissive, false
	}
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeConservative {
		return "conservative"
	}
	return "permissive"
}

// Footprint is a task's declared files plus the transitive set of files they
// statically reference. Closure entries ending in "/" denote whole
// directories.
type Footprint struct {
	TaskID     domain.TaskID
	Declared   []string
	Closure    []string
	Unresolved bool
}

// Analyzer computes the symmetric conflict relation between tasks. It is
// stateless across invocations and deterministic for fixed file contents.
type Analyzer struct {
	root    string
	mode    Mode
	scanner *Scanner
}

// NewAnalyzer creates an analyzer rooted at the project directory.
func NewAnalyzer(root string, mode Mode) *Analyzer {
	return &Analyzer{
		root:    root,
		mode:    mode,
		scanner: NewScanner(root),
	}
}

// Mode returns the analyzer's configured mode.
func (a *Analyzer) Mode() Mode {
	return a.mode
}

// FootprintOf computes the footprint and import closure for one task.
func (a *Analyzer) FootprintOf(task ledger.Task) *Footprint {
	fp := &Footprint{TaskID: task.ID}

	declared := make(map[string]bool)
	for _, path := range task.Footprint() {
		declared[normalize(path)] = true
	}
	fp.Declared = sortedKeys(declared)

	closure := make(map[string]bool)
	visited := make(map[string]bool)
	queue := append([]string(nil), fp.Declared...)

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if visited[path] {
			continue
		}
		visited[path] = true

		refs, resolved := a.scanner.Scan(path)
		if !resolved {
			fp.Unresolved = true
		}

		for _, ref := range refs {
			ref = normalize(ref)
			if !declared[ref] {
				closure[ref] = true
			}
			// Directory references expand to the source files inside them so
			// the closure stays transitive.
			if strings.HasSuffix(ref, "/") {
				for _, f := range a.sourceFilesIn(ref) {
					if !visited[f] {
						queue = append(queue, f)
					}
				}
			} else if !visited[ref] {
				queue = append(queue, ref)
			}
		}
	}

	fp.Closure = sortedKeys(closure)
	return fp
}

// Footprints computes footprints for every task, in declared order.
func (a *Analyzer) Footprints(tasks []ledger.Task) []*Footprint {
	out := make([]*Footprint, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, a.FootprintOf(t))
	}
	return out
}

// Conflicts reports whether two tasks may not run concurrently: their
// declared footprints intersect, or either declared set intersects the
// other's import closure. In conservative mode an unresolved footprint
// conflicts with everything.
func (a *Analyzer) Conflicts(x, y *Footprint) bool {
	if a.mode == ModeConservative && (x.Unresolved || y.Unresolved) {
		return true
	}
	if intersects(x.Declared, y.Declared) {
		return true
	}
	if intersects(x.Declared, y.Closure) {
		return true
	}
	return intersects(y.Declared, x.Closure)
}

// intersects reports whether any path in files matches any entry in other,
// where entries ending in "/" match every path beneath that directory.
func intersects(files, other []string) bool {
	for _, f := range files {
		for _, o := range other {
			if pathMatches(f, o) || pathMatches(o, f) {
				return true
			}
		}
	}
	return false
}

func pathMatches(path, entry string) bool {
	if strings.HasSuffix(entry, "/") {
		return strings.HasPrefix(path, entry) || path+"/" == entry
	}
	return path == entry
}

func (a *Analyzer) sourceFilesIn(dir string) []string {
	entries, err := os.ReadDir(filepath.Join(a.root, strings.TrimSuffix(dir, "/")))
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".go", ".js", ".jsx", ".ts", ".tsx", ".mjs", ".py":
			files = append(files, normalize(filepath.Join(strings.TrimSuffix(dir, "/"), e.Name())))
		}
	}
	sort.Strings(files)
	return files
}

func normalize(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(cleaned, "/") {
		cleaned += "/"
	}
	return strings.TrimPrefix(cleaned, "./")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
