package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{input: "DEBUG", want: zap.DebugLevel},
		{input: "debug", want: zap.DebugLevel},
		{input: " warn ", want: zap.WarnLevel},
		{input: "ERROR", want: zap.ErrorLevel},
		{input: "", want: zap.InfoLevel},
		{input: "nonsense", want: zap.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input).Level(); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{code: 200, want: "success"},
		{code: 204, want: "success"},
		{code: 404, want: "client_error"},
		{code: 429, want: "rate_limited"},
		{code: 500, want: "server_error"},
		{code: 100, want: "error"},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.code); got != tt.want {
			t.Errorf("StatusLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
