package galleria

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidPath validates a slash separated object path component such as a
// gallery directory. It checks that the path:
//   - is not empty, ".", or "/"
//   - is relative and does not end with "/"
//   - does not contain ".." or "." segments
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? #
//   - is valid UTF-8 without null bytes or control characters
//
// Spaces are allowed; camera exports often contain them.
func IsValidPath(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' || strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	for _, segment := range strings.Split(p, "/") {
		if segment == "." || segment == ".." {
			return false
		}
		if strings.TrimSpace(segment) != segment {
			return false
		}
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || (unicode.IsSpace(r) && r != ' ') {
			return false
		}
	}

	return true
}

// IsValidFilename is IsValidPath restricted to a single segment.
func IsValidFilename(name string) bool {
	return !strings.Contains(name, "/") && IsValidPath(name)
}
