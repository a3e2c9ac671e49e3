package qa

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
)

// Line is the outcome of parsing one line of an answer response body
type Line struct {
	Number    int
	Answer    string
	HasAnswer bool
	Err       error
}

// Lines lazily splits body on \r\n, \r or \n, skips blank lines and yields
// one parse attempt per remaining line. A bad line yields a Line with Err
// set and never stops the sequence.
func Lines(body string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		number := 0
		rest := body
		for len(rest) > 0 {
			raw := rest
			if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
				raw = rest[:i]
				if strings.HasPrefix(rest[i:], "\r\n") {
					rest = rest[i+2:]
				} else {
					rest = rest[i+1:]
				}
			} else {
				rest = ""
			}

			number++
			if strings.TrimSpace(raw) == "" {
				continue
			}

			if !yield(parseLine(number, raw)) {
				return
			}
		}
	}
}

func parseLine(number int, raw string) Line {
	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &object); err != nil {
		return Line{Number: number, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}

	value, ok := object["answer"]
	if !ok {
		return Line{Number: number}
	}

	return Line{Number: number, Answer: answerText(value), HasAnswer: true}
}

// answerText renders the answer token: strings are unquoted, null is empty
// and any other JSON value is kept as its literal text.
func answerText(value json.RawMessage) string {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return text
	}
	if string(value) == "null" {
		return ""
	}
	return string(value)
}

// ParseAnswer concatenates every answer fragment of body in line order.
// Malformed lines are logged and skipped.
func ParseAnswer(body string, logger *zap.Logger) string {
	var result strings.Builder
	for line := range Lines(body) {
		if line.Err != nil {
			logger.Error("Failed to parse answer line",
				zap.Int("line", line.Number),
				zap.Error(line.Err))
			continue
		}
		if line.HasAnswer {
			result.WriteString(line.Answer)
		}
	}
	return result.String()
}
