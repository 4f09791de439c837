package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TSOJO/isolate-wrapper/internal/language"
)

const (
	tracebackMarker = "Traceback (most recent call last):"
	exceptionMarker = "Exception: "
)

// errorDigest condenses sandbox stderr into the message shown to the user.
// The sandbox appends its own two-line summary, which is dropped first.
func (u *Unit) errorDigest(stderr string) string {
	raw := dropLastLines(stderr, 2)
	switch u.Lang {
	case language.Python:
		// The interpreter may print its own noise before the traceback.
		if idx := strings.LastIndex(raw, tracebackMarker); idx != -1 {
			return raw[idx:]
		}
		return raw
	case language.AQAAsm:
		return aqaDigest(raw, u.Code)
	default:
		return ""
	}
}

// aqaDigest rebuilds an interpreter fault as the message plus the offending
// source line. Interpreter errors end with the 1-based line number; stderr
// not of that shape passes through untouched.
func aqaDigest(raw, code string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return raw
	}
	lineNum, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return raw
	}

	message := raw
	if idx := strings.LastIndex(raw, exceptionMarker); idx != -1 {
		message = raw[idx+len(exceptionMarker):]
	}

	sourceLine := ""
	lines := strings.Split(code, "\n")
	if lineNum >= 1 && lineNum <= len(lines) {
		sourceLine = lines[lineNum-1]
	}
	return fmt.Sprintf("%s\n  Line %d:\n    %s", message, lineNum, sourceLine)
}

// dropLastLines removes the trailing n lines.
func dropLastLines(s string, n int) string {
	parts := strings.Split(s, "\n")
	if len(parts) <= n {
		return ""
	}
	return strings.Join(parts[:len(parts)-n], "\n")
}
