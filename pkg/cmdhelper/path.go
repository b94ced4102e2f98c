package cmdhelper

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// HomeDir returns the home directory of the current user, falling back to the
// user database when $HOME is unset.
func HomeDir() (string, error) {
	var errs []error
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return home, nil
	}
	errs = append(errs, err)
	u, err := user.Current()
	if err == nil && u != nil && u.HomeDir != "" {
		return u.HomeDir, nil
	}
	errs = append(errs, err)
	return "", fmt.Errorf("unable to determine home directory: %w", errors.Join(errs...))
}

// ExpandHome replaces a leading "~" of a path given on the command line with the
// home directory. Other paths are returned as-is, "~user" is rejected.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if len(path) > 1 && path[1] != '/' && path[1] != '\\' {
		return "", fmt.Errorf("cannot expand user-specific home dir in %q", path)
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
