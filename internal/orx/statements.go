package orx

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Statement is one logical statement and the line it started on.
type Statement struct {
	Text string
	Line int
}

// Statements splits r into logical statements. A line that begins with
// whitespace continues the previous statement; comment lines and blank lines
// are dropped without terminating the statement in progress.
func Statements(r io.Reader) ([]Statement, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		out     []Statement
		current strings.Builder
		start   int
	)
	flush := func() {
		if current.Len() == 0 {
			return
		}
		out = append(out, Statement{Text: current.String(), Line: start})
		current.Reset()
	}

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !startsWithSpace(line) {
			flush()
			start = lineNum
		} else if current.Len() == 0 {
			start = lineNum
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read statements: %w", err)
	}
	flush()
	return out, nil
}

func startsWithSpace(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case ' ', '\t', '\v', '\f':
		return true
	}
	return false
}
