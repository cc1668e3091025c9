package ha

import (
	"bytes"
	"io"
	"strings"
)

func jsonReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// cutPipe splits an "<entity_id>|<area_name>" template line.
func cutPipe(line string) (entityID, area string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	before, after, found := strings.Cut(line, "|")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(before), strings.TrimSpace(after), true
}
