package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Tail returns up to maxLines of the most recent lines in the log at path,
// keeping only lines that contain match when it is non-empty. The second
// result is the number of lines that matched. A missing file is an empty log.
func Tail(path string, maxLines int, match string) ([]string, int, error) {
	if maxLines <= 0 {
		return nil, 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("logging: open %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if match != "" && !strings.Contains(line, match) {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("logging: read %s: %w", path, err)
	}
	total := len(lines)
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total, nil
}
