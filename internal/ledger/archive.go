package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/wavemaker/internal/errors"
)

// Archive copies the ledger document and learnings log wholesale into
// archiveDir under runID. Called once, at the end of a fully successful run;
// the live documents are left in place.
func Archive(store *Store, learnings *LearningsLog, archiveDir, runID string) (string, error) {
	dest := filepath.Join(archiveDir, runID)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create archive directory %s", dest), err)
	}

	if err := copyFile(store.Path(), filepath.Join(dest, filepath.Base(store.Path()))); err != nil {
		return "", err
	}

	// The learnings log may not exist if no wave produced learnings.
	if _, err := os.Stat(learnings.Path()); err == nil {
		if err := copyFile(learnings.Path(), filepath.Join(dest, filepath.Base(learnings.Path()))); err != nil {
			return "", err
		}
	}

	return dest, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read %s", src), err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write %s", dst), err)
	}
	return nil
}
