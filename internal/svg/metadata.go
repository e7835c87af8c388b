package svg

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrNoRoot    = errors.New("no <svg> element")
	ErrNoViewBox = errors.New("could not detect image size")
)

var viewBoxPattern = regexp.MustCompile(`viewBox\s*=\s*["']([^"']*)["']`)

// AddLicense inserts license inside a <metadata> element directly after the
// opening <svg> tag.
func AddLicense(doc []byte, license string) ([]byte, error) {
	start := bytes.Index(doc, []byte("<svg"))
	if start < 0 {
		return nil, ErrNoRoot
	}
	end := bytes.IndexByte(doc[start:], '>')
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated opening tag", ErrNoRoot)
	}
	insert := start + end + 1

	var out bytes.Buffer
	out.Grow(len(doc) + len(license) + 32)
	out.Write(doc[:insert])
	out.WriteString("\n<metadata>\n")
	out.WriteString(license)
	out.WriteString("</metadata>\n")
	out.Write(doc[insert:])
	return out.Bytes(), nil
}

// ViewBoxSize returns the width and height declared by the viewBox attribute.
func ViewBoxSize(doc []byte) (int, int, error) {
	match := viewBoxPattern.FindSubmatch(doc)
	if match == nil {
		return 0, 0, ErrNoViewBox
	}
	fields := bytes.FieldsFunc(match[1], func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return 0, 0, fmt.Errorf("%w: viewBox %q", ErrNoViewBox, match[1])
	}
	var nums [4]int
	for i, field := range fields {
		n, err := strconv.Atoi(string(field))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: viewBox %q", ErrNoViewBox, match[1])
		}
		nums[i] = n
	}
	return nums[2] - nums[0], nums[3] - nums[1], nil
}
