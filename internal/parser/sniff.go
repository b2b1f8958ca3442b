package parser

import (
	"bufio"
	"bytes"
	"strings"
)

var candidateDelimiters = []string{",", ";", "\t", "|"}

// SniffDelimiter picks the candidate delimiter that splits the first lines
// into the same number of fields most consistently. Defaults to comma.
func SniffDelimiter(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lines := make([]string, 0, 5)
	for scanner.Scan() && len(lines) < 5 {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ","
	}

	best, bestScore := ",", 0
	for _, d := range candidateDelimiters {
		first := strings.Count(lines[0], d)
		if first == 0 {
			continue
		}
		score := 0
		for _, l := range lines {
			if strings.Count(l, d) == first {
				score += first
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}
