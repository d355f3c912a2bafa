package logtail

import (
	"regexp"
	"strings"
)

var (
	csiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[@-~]`)
	oscRe = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)
	escRe = regexp.MustCompile(`\x1b[()][AB012]|\x1b[@-Z\\-_=>]`)
)

// Plain renders a pty capture as readable text. Installer children write
// colors, cursor movement, and carriage-return progress updates; the
// plain view strips the control sequences and keeps only the final state
// of each CR-overwritten line, the way a terminal would have left it.
func Plain(data []byte) []byte {
	s := string(data)
	s = oscRe.ReplaceAllString(s, "")
	s = csiRe.ReplaceAllString(s, "")
	s = escRe.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		// A bare \r rewinds the cursor; whatever follows overwrites the
		// line. For typical progress output the last segment is longest,
		// so keeping it alone loses nothing.
		if idx := strings.LastIndexByte(line, '\r'); idx >= 0 {
			line = line[idx+1:]
		}
		lines[i] = line
	}
	return []byte(strings.Join(lines, "\n"))
}
