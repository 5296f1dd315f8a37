package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logFunc   func(cl *ConsoleLogger)
		wantWords []string
		skipWords []string
	}{
		{
			name:      "info level suppresses debug",
			logLevel:  "info",
			logFunc:   func(cl *ConsoleLogger) { cl.LogDebug("resolving schema key"); cl.LogInfo("analysis valid") },
			wantWords: []string{"[INFO]", "analysis valid"},
			skipWords: []string{"[DEBUG]", "resolving schema key"},
		},
		{
			name:      "debug level passes debug",
			logLevel:  "debug",
			logFunc:   func(cl *ConsoleLogger) { cl.LogDebug("resolving schema key") },
			wantWords: []string{"[DEBUG]", "resolving schema key"},
		},
		{
			name:      "error level suppresses warn",
			logLevel:  "error",
			logFunc:   func(cl *ConsoleLogger) { cl.LogWarn("summary rows flagged"); cl.LogError("qsub log errors") },
			wantWords: []string{"[ERROR]", "qsub log errors"},
			skipWords: []string{"[WARN]"},
		},
		{
			name:      "invalid level defaults to info",
			logLevel:  "loud",
			logFunc:   func(cl *ConsoleLogger) { cl.LogTrace("walk"); cl.LogInfo("done") },
			wantWords: []string{"[INFO]"},
			skipWords: []string{"[TRACE]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.logLevel)
			tt.logFunc(cl)

			out := buf.String()
			for _, want := range tt.wantWords {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, skip := range tt.skipWords {
				if strings.Contains(out, skip) {
					t.Errorf("output should not contain %q:\n%s", skip, out)
				}
			}
		})
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "trace")

	// Must not panic
	cl.LogTrace("a")
	cl.LogDebug("b")
	cl.LogInfo("c")
	cl.LogWarn("d")
	cl.LogError("e")
}

func TestConsoleLoggerTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")
	cl.LogInfo("message")

	out := buf.String()
	// "[HH:MM:SS] [INFO] message\n"
	if len(out) < 11 || out[0] != '[' || out[9] != ']' {
		t.Errorf("expected [HH:MM:SS] prefix, got %q", out)
	}
	if !strings.HasSuffix(out, "message\n") {
		t.Errorf("expected trailing message and newline, got %q", out)
	}
}

func TestConsoleLoggerNoColorForBuffer(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")
	cl.LogError("plain")

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("non-TTY writer should not receive ANSI codes: %q", buf.String())
	}
}
