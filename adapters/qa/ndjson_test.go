package qa

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseAnswer(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "two fragments",
			body: "{\"answer\":\"Hi\"}\n{\"answer\":\" there\"}",
			want: "Hi there",
		},
		{
			name: "malformed line in the middle",
			body: "{\"answer\":\"A\"}\nnot json\n{\"answer\":\"B\"}",
			want: "AB",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "blank lines and mixed line endings",
			body: "\r\n{\"answer\":\"one\"}\r\n\r\n{\"answer\":\"two\"}\r{\"answer\":\"three\"}\n\n",
			want: "onetwothree",
		},
		{
			name: "lines without answer contribute nothing",
			body: "{\"context\":\"\"}\n{\"answer\":\"x\",\"context\":\"ignored\"}",
			want: "x",
		},
		{
			name: "non-object JSON is skipped",
			body: "[1,2]\n\"text\"\n{\"answer\":\"ok\"}",
			want: "ok",
		},
		{
			name: "non-string answer keeps its literal text",
			body: "{\"answer\":42}\n{\"answer\":null}\n{\"answer\":true}",
			want: "42true",
		},
		{
			name: "only malformed lines",
			body: "oops\n{broken",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnswer(tt.body, logger)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseAnswer_LogsMalformedLines(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)

	ParseAnswer("{\"answer\":\"A\"}\nnot json\n{\"answer\":\"B\"}", logger)

	entries := logs.FilterMessage("Failed to parse answer line").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 logged parse failure, got %d", len(entries))
	}

	if line := entries[0].ContextMap()["line"]; line != int64(2) {
		t.Errorf("Expected failure on line 2, got %v", line)
	}
}

func TestLines_IsLazy(t *testing.T) {
	body := "{\"answer\":\"a\"}\n{\"answer\":\"b\"}\n{\"answer\":\"c\"}"

	var seen []string
	for line := range Lines(body) {
		seen = append(seen, line.Answer)
		if len(seen) == 2 {
			break
		}
	}

	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("Expected to stop after two lines, got %v", seen)
	}
}

func TestLines_ReportsErrorsWithoutStopping(t *testing.T) {
	var errs, answers int
	for line := range Lines("bad\n{\"answer\":\"x\"}\nworse") {
		if line.Err != nil {
			errs++
			continue
		}
		if line.HasAnswer {
			answers++
		}
	}

	if errs != 2 {
		t.Errorf("Expected 2 errors, got %d", errs)
	}
	if answers != 1 {
		t.Errorf("Expected 1 answer, got %d", answers)
	}
}

// A CRLF pair is one line break, so line numbers match what an editor shows
func TestLines_CRLFCountsOnce(t *testing.T) {
	var numbers []int
	for line := range Lines("{\"answer\":\"a\"}\r\n\r\n{\"answer\":\"b\"}\r\n") {
		numbers = append(numbers, line.Number)
	}

	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 3 {
		t.Errorf("Expected lines 1 and 3, got %v", numbers)
	}

	var mixed []int
	for line := range Lines("{\"answer\":\"a\"}\r{\"answer\":\"b\"}\n\r\n{\"answer\":\"c\"}") {
		mixed = append(mixed, line.Number)
	}
	if len(mixed) != 3 || mixed[2] != 4 {
		t.Errorf("Expected lines 1, 2 and 4, got %v", mixed)
	}
}

func TestParseAnswer_CRLFLineNumbers(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	answer := ParseAnswer("{\"answer\":\"Aye\"}\r\nnot json\r\n", zap.New(core))
	if answer != "Aye" {
		t.Errorf("Expected 'Aye', got %q", answer)
	}

	entries := logs.FilterMessage("Failed to parse answer line").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 logged error, got %d", len(entries))
	}
	if line := entries[0].ContextMap()["line"]; line != int64(2) {
		t.Errorf("Expected the bad line to be line 2, got %v", line)
	}
}
