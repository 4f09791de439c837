// Package checker compares program output against the expected answer.
package checker

import "strings"

// Accept reports whether output matches answer: equal line counts, and each
// line pair equal after right-trimming whitespace. Interior whitespace is
// not normalised.
func Accept(output, answer string) bool {
	outputLines := splitLines(output)
	answerLines := splitLines(answer)
	if len(outputLines) != len(answerLines) {
		return false
	}
	for i := range outputLines {
		if strings.TrimRight(outputLines[i], " \t\r\n") != strings.TrimRight(answerLines[i], " \t\r\n") {
			return false
		}
	}
	return true
}

// splitLines splits on newlines without manufacturing a final empty line
// for terminator-ended text.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
