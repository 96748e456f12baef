package domain

import "fmt"

// FileAction describes what a task intends to do to a declared file.
type FileAction string

// Valid file actions
const (
	FileActionCreate FileAction = "create"
	FileActionModify FileAction = "modify"
	FileActionDelete FileAction = "delete"
)

// NewFileAction creates a new FileAction value object with validation
func NewFileAction(value string) (FileAction, error) {
	a := FileAction(value)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

// Validate checks if the file action is valid
func (a FileAction) Validate() error {
	switch a {
	case FileActionCreate, FileActionModify, FileActionDelete:
		return nil
	default:
		return fmt.Errorf("invalid file action %q: must be create, modify, or delete", string(a))
	}
}

// String returns the string representation
func (a FileAction) String() string {
	return string(a)
}
