package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a key=value configuration file into a new parentless
// configuration.
func Load(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening configuration file: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads key=value lines. Blank lines and lines starting with '#' are
// skipped; a non-comment line without '=' is an error.
func Parse(r io.Reader) (*Configuration, error) {
	c := New(nil)

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.Contains(line, "=") {
			return nil, fmt.Errorf("invalid configuration line %d: %s", lineNumber, line)
		}
		c.ParseAndSet(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	return c, nil
}
