package tui

import (
	"strings"
	"testing"
)

func TestCleanLogText_StripsANSI(t *testing.T) {
	input := "\x1b[31mESCALATE\x1b[0m: velocity check failed"
	result := CleanLogText(input)

	if result != "ESCALATE: velocity check failed" {
		t.Errorf("expected clean text, got '%s'", result)
	}
}

func TestCleanLogText_NormalizesLineEndings(t *testing.T) {
	input := "line1\r\nline2\rline3"
	result := CleanLogText(input)

	if result != "line1\nline2\nline3" {
		t.Errorf("expected normalized newlines, got %q", result)
	}
}

func TestFlatten(t *testing.T) {
	input := "  low \x1b[33mDQS\x1b[0m\r\n score  "
	result := Flatten(input)

	if result != "low DQS score" {
		t.Errorf("expected single-line text, got '%s'", result)
	}
}

func TestWrap_ShortText(t *testing.T) {
	result := Wrap("hello world", 20)

	if result != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", result)
	}
}

func TestWrap_MultipleLines(t *testing.T) {
	text := "quality score below threshold on three fields"
	width := 15
	result := Wrap(text, width)

	lines := strings.Split(result, "\n")
	if len(lines) < 2 {
		t.Errorf("expected wrapping, got %d lines", len(lines))
	}
	for i, line := range lines {
		if lineWidth := VisualWidth(line); lineWidth > width {
			t.Errorf("line %d exceeds width %d: width=%d, content='%s'", i, width, lineWidth, line)
		}
	}
}

func TestWrap_LongWord(t *testing.T) {
	// Simulate an unbroken token like a correlation id
	text := "corr=8f14e45fceea167a5a36dedd4bea2543-retry-0001"
	width := 20

	result := Wrap(text, width)
	lines := strings.Split(result, "\n")

	if len(lines) < 2 {
		t.Errorf("expected long word to be broken into multiple lines, got %d lines", len(lines))
	}
	for i, line := range lines {
		if lineWidth := VisualWidth(line); lineWidth > width {
			t.Errorf("line %d exceeds width %d: width=%d, content='%s'", i, width, lineWidth, line)
		}
	}

	reconstructed := strings.ReplaceAll(result, "\n", "")
	if reconstructed != text {
		t.Errorf("content was modified during wrapping\nexpected: %s\ngot:      %s", text, reconstructed)
	}
}

func TestWrap_ZeroWidth(t *testing.T) {
	text := "hello world"
	if result := Wrap(text, 0); result != text {
		t.Errorf("expected original text for zero width, got '%s'", result)
	}
}

func TestTruncate_WithEllipsis(t *testing.T) {
	result := Truncate("this is a very long reason", 10, true)

	if width := VisualWidth(result); width > 10 {
		t.Errorf("truncated text exceeds max: width=%d, content='%s'", width, result)
	}
	if !strings.HasSuffix(result, "...") {
		t.Errorf("expected ellipsis, got '%s'", result)
	}
}

func TestTruncate_Fits(t *testing.T) {
	if result := Truncate("short", 10, true); result != "short" {
		t.Errorf("expected unchanged text, got '%s'", result)
	}
}

func TestTruncateAndPad(t *testing.T) {
	result := TruncateAndPad("short", 10, false)

	if width := VisualWidth(result); width != 10 {
		t.Errorf("expected width 10, got %d for '%s'", width, result)
	}
}

func TestTruncateAndPad_WideRunes(t *testing.T) {
	result := TruncateAndPad("日本語", 10, false)

	if width := VisualWidth(result); width != 10 {
		t.Errorf("expected width 10, got %d for '%s'", width, result)
	}
}
