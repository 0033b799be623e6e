package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePathValidator confines the database and log files to known
// directories.
type FilePathValidator struct {
	// AllowedBaseDirs restricts file operations to specific base directories.
	// Empty allows any directory.
	AllowedBaseDirs []string
	// MaxPathLength is the maximum allowed path length
	MaxPathLength int
}

// NewFilePathValidator allows the data directory, the config directory and
// the system temp directory.
func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".kbsearch"),
			filepath.Join(homeDir, ".config", "kbsearch"),
			os.TempDir(),
		},
		MaxPathLength: 4096,
	}
}

// NewPermissiveFilePathValidator allows any directory.
func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{MaxPathLength: 4096}
}

// ValidateAndSanitize expands "~/", makes path absolute and checks it lies
// within an allowed directory.
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if v.MaxPathLength > 0 && len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}
	for _, r := range path {
		if r == 0 || (r < 32 && r != '\t') {
			return "", fmt.Errorf("path contains control characters")
		}
	}
	for _, part := range strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }) {
		if part == ".." {
			return "", fmt.Errorf("directory traversal not allowed")
		}
	}

	if strings.HasPrefix(path, "~") {
		if !strings.HasPrefix(path, "~/") {
			return "", fmt.Errorf("invalid tilde usage")
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}

	if err := v.withinBaseDirs(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (v *FilePathValidator) withinBaseDirs(abs string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// ValidateFile validates a file path. An existing directory at path is
// rejected.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(validated); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", validated)
	}
	return validated, nil
}

// EnsureParent validates a file path and creates its parent directory.
func (v *FilePathValidator) EnsureParent(path string) (string, error) {
	validated, err := v.ValidateFile(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(validated), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return validated, nil
}
