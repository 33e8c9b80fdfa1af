package fileutil

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultMaxFileSize caps the size of an input list read by ReadFileLines
	DefaultMaxFileSize = 16 * 1024 * 1024
	// MaxLineLength is the longest line ReadLines accepts
	MaxLineLength = 64 * 1024
)

// ReadLines calls processLine for every entry of r. Lines are trimmed, and blank
// lines and lines starting with '#' are skipped. lineNum is 1-based and counts
// skipped lines too. A non-nil error from processLine stops the read.
func ReadLines(r io.Reader, processLine func(line string, lineNum int) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineLength)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := processLine(line, lineNum); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "read line %d", lineNum+1)
	}
	return nil
}

// ReadFileLines runs ReadLines over the file at path, refusing files larger than
// maxSize bytes. maxSize <= 0 means DefaultMaxFileSize.
func ReadFileLines(path string, maxSize int64, processLine func(line string, lineNum int) error) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat input file")
	}
	if info.IsDir() {
		return errors.Errorf("%s is a directory", path)
	}
	if info.Size() > maxSize {
		return errors.Errorf("file too large: %s (%d bytes, max %d bytes)", path, info.Size(), maxSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input file")
	}
	defer f.Close()

	return ReadLines(f, processLine)
}
