package frontier

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadURLList reads newline-delimited URLs. Lines are trimmed; blank lines
// and lines starting with '#' are ignored. Repeated URLs are kept once, at
// their first position.
func ReadURLList(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}

// ReadURLFile opens path and reads it with ReadURLList.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- operator supplied input list.
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadURLList(f)
}
