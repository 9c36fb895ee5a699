package manifest

import (
	"bytes"
	"strings"
)

// RemoveDevDeps returns a copy of raw with every dev-dependency table
// removed: [dev-dependencies], its [dev-dependencies.<name>] sub-tables,
// and the per-target [target.<spec>.dev-dependencies] variants. All other
// lines are preserved byte-for-byte, so applying the transformation twice
// yields the same result.
func RemoveDevDeps(raw []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(raw))

	skipping := false
	for _, line := range splitLines(raw) {
		if name, ok := tableHeader(line); ok {
			skipping = isDevDepsTable(name)
		}
		if !skipping {
			out.Write(line)
		}
	}
	return out.Bytes()
}

// splitLines splits raw into lines, each retaining its trailing newline.
func splitLines(raw []byte) [][]byte {
	var lines [][]byte
	for len(raw) > 0 {
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			lines = append(lines, raw)
			break
		}
		lines = append(lines, raw[:i+1])
		raw = raw[i+1:]
	}
	return lines
}

// tableHeader extracts the dotted key of a [table] or [[array-of-tables]]
// header line.
func tableHeader(line []byte) (string, bool) {
	s := strings.TrimSpace(string(line))
	if !strings.HasPrefix(s, "[") {
		return "", false
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimPrefix(s, "[")
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(s[:end]), true
}

func isDevDepsTable(name string) bool {
	keys := splitKeys(name)
	if keys[0] == "dev-dependencies" {
		return true
	}
	if keys[0] != "target" {
		return false
	}
	for _, k := range keys[1:] {
		if k == "dev-dependencies" {
			return true
		}
	}
	return false
}

// splitKeys splits a dotted TOML key, ignoring dots inside quoted segments
// such as target.'cfg(unix)'.dev-dependencies.
func splitKeys(s string) []string {
	var keys []string
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				b.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '.':
			keys = append(keys, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(keys, strings.TrimSpace(b.String()))
}
