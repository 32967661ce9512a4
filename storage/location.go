package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckError is returned by the location checks. Callers usually wrap it with
// the run the location belongs to.
type CheckError struct {
	Description string
	Path        string
	Machine     string
}

func (e *CheckError) Error() string {
	if e.Machine == "" {
		return fmt.Sprintf("%s: %s", e.Description, e.Path)
	}
	return fmt.Sprintf("%s: %s on %s", e.Description, e.Path, e.Machine)
}

// DataLocation is a path inside a DataStorage.
type DataLocation struct {
	Storage DataStorage `json:"storage"`
	Path    string      `json:"path"`
}

// IsZero reports whether l is the zero location.
func (l DataLocation) IsZero() bool {
	return l.Path == "" && l.Storage == DataStorage{}
}

func (l DataLocation) checkError(description string) error {
	return &CheckError{Description: description, Path: l.Path, Machine: l.Storage.Machine}
}

func (l DataLocation) Exists() bool {
	_, err := os.Stat(l.Path)
	return err == nil
}

func (l DataLocation) IsDirectory() bool {
	info, err := os.Stat(l.Path)
	return err == nil && info.IsDir()
}

func (l DataLocation) IsFile() bool {
	info, err := os.Stat(l.Path)
	return err == nil && info.Mode().IsRegular()
}

func (l DataLocation) IsReadable() bool {
	return unix.Access(l.Path, unix.R_OK) == nil
}

func (l DataLocation) IsWritable() bool {
	return unix.Access(l.Path, unix.W_OK) == nil
}

func (l DataLocation) CheckIfExists(description string) error {
	if !l.Exists() {
		return l.checkError(description)
	}
	return nil
}

func (l DataLocation) CheckIfNotExists(description string) error {
	if l.Exists() {
		return l.checkError(description)
	}
	return nil
}

func (l DataLocation) CheckIfDirectory(description string) error {
	if !l.IsDirectory() {
		return l.checkError(description)
	}
	return nil
}

func (l DataLocation) CheckIfFile(description string) error {
	if !l.IsFile() {
		return l.checkError(description)
	}
	return nil
}

func (l DataLocation) CheckIfReadable(description string) error {
	if !l.IsReadable() {
		return l.checkError(description)
	}
	return nil
}

func (l DataLocation) CheckIfWritable(description string) error {
	if !l.IsWritable() {
		return l.checkError(description)
	}
	return nil
}

// CheckReadableDirectory checks the location is an existing readable
// directory. kind names the directory in error messages, e.g. "input sync".
func (l DataLocation) CheckReadableDirectory(kind string) error {
	return firstError(
		func() error { return l.CheckIfExists("The " + kind + " directory does not exist") },
		func() error { return l.CheckIfDirectory("The " + kind + " is not a directory") },
		func() error { return l.CheckIfReadable("The " + kind + " directory is not readable") },
	)
}

// CheckWritableDirectory checks the location is an existing writable directory.
func (l DataLocation) CheckWritableDirectory(kind string) error {
	return firstError(
		func() error { return l.CheckIfExists("The " + kind + " directory does not exist") },
		func() error { return l.CheckIfDirectory("The " + kind + " is not a directory") },
		func() error { return l.CheckIfWritable("The " + kind + " directory is not writable") },
	)
}

// CheckReadableFile checks the location is an existing readable regular file.
func (l DataLocation) CheckReadableFile(kind string) error {
	return firstError(
		func() error { return l.CheckIfExists("The " + kind + " file does not exist") },
		func() error { return l.CheckIfFile("The " + kind + " is not a regular file") },
		func() error { return l.CheckIfReadable("The " + kind + " file is not readable") },
	)
}

// DiskUsage returns the apparent size in bytes of every regular file under
// the location.
func (l DataLocation) DiskUsage() (int64, error) {
	if err := l.CheckIfExists("The location does not exist"); err != nil {
		return 0, err
	}

	var total int64
	err := filepath.WalkDir(l.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to compute disk usage of %s: %w", l.Path, err)
	}
	return total, nil
}

func (l DataLocation) String() string {
	if l.Storage.Machine == "" {
		return l.Path
	}
	return l.Storage.Machine + ":" + l.Path
}

func firstError(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
