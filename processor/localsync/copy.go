package localsync

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyTree mirrors the regular files and directories of src into dst. Files
// already present in dst with the same size and modification time are left
// alone, so an interrupted or partial copy can be resumed.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			if upToDate(target, info) {
				return nil
			}
			return copyFile(path, target, info)
		default:
			// sockets, devices and symlinks are not part of run data
			return nil
		}
	})
}

func upToDate(target string, src fs.FileInfo) bool {
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() == src.Size() && info.ModTime().Equal(src.ModTime())
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
