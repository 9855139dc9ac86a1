package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.Level())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}

	if logger.Format() != FormatJSON {
		t.Errorf("expected default format JSON, got %v", logger.Format())
	}
}

func TestLogger_ZeroValue_IsSilent(t *testing.T) {
	var logger Logger

	logger.Error("nothing happens")
	logger.With(slog.String("k", "v")).Info("still nothing")

	if logger.Enabled(context.Background(), LevelError) {
		t.Error("zero value logger reports enabled")
	}

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("zero value logger reports non-default configuration")
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelDebug))
	logger.Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to Debug")
	}

	buf.Reset()

	logger = Make(&buf, WithLevel(LevelError))
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger.Error("error message")

	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Trace_RendersTraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace))
	logger.Trace("fine grained")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithCaller(true))
	logger.Info("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("caller info does not point at the test file: %s", buf.String())
	}

	buf.Reset()

	logger = Make(&buf, WithCaller(false))
	logger.Info("test message")

	if strings.Contains(buf.String(), "source") {
		t.Error("caller info included when disabled")
	}
}

func TestLogger_WithFormat_SetsOutputFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON))
		logger.Info("test message", slog.String("key", "value"))

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}

		if result["msg"] != "test message" {
			t.Errorf("expected msg=test message, got %v", result["msg"])
		}

		if result["key"] != "value" {
			t.Errorf("expected key=value, got %v", result["key"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatText))
		logger.Info("test message", slog.String("key", "value"))

		output := buf.String()
		if !strings.Contains(output, `msg="test message"`) ||
			!strings.Contains(output, "key=value") {
			t.Errorf("unexpected text output: %s", output)
		}
	})
}

func TestLogger_WithTimeLayout_None_OmitsTime(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"))
	logger.Info("no time")

	if strings.Contains(buf.String(), `"time"`) {
		t.Errorf("time included: %s", buf.String())
	}
}

func TestLogger_Wrap_DoesNotAffectOriginal(t *testing.T) {
	var a, b bytes.Buffer

	base := Make(&a, WithLevel(LevelWarn))
	wrapped := base.Wrap(WithOutput(&b), WithLevel(LevelDebug))

	base.Info("dropped")
	wrapped.Debug("kept")

	if a.Len() != 0 {
		t.Errorf("base logger wrote below its level: %s", a.String())
	}

	if !strings.Contains(b.String(), "kept") {
		t.Errorf("wrapped logger did not write: %s", b.String())
	}

	if base.Level() != LevelWarn {
		t.Errorf("base level changed to %v", base.Level())
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf).With(slog.String("component", "lang"))
	logger.Info("hello")

	if !strings.Contains(buf.String(), `"component":"lang"`) {
		t.Errorf("attribute missing: %s", buf.String())
	}
}

func TestLogger_Pretty(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf,
			WithFormat(FormatText), WithPretty(true), WithTimeLayout("none"))
		logger.With(slog.Int("n", 3)).
			WithGroup("g").
			Info("pretty", slog.Bool("ok", true))

		key := func(k string) string { return colorGray + k + colorReset + "=" }

		out := buf.String()
		for _, want := range []string{"pretty", key("n") + colorYellow + "3", key("g.ok") + colorGreen + "true"} {
			if !strings.Contains(out, want) {
				t.Errorf("output %q missing %q", out, want)
			}
		}

		if strings.Contains(out, key("time")) {
			t.Errorf("time included: %q", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON), WithPretty(true))
		logger.Info("pretty", slog.Group("req", slog.String("id", "x1")))

		out := buf.String()
		if !strings.HasPrefix(out, "{\n") || !strings.HasSuffix(out, "}\n") {
			t.Errorf("unexpected framing: %q", out)
		}

		if !strings.Contains(out, "req") || !strings.Contains(out, "x1") {
			t.Errorf("group missing: %q", out)
		}
	})
}

func TestLogger_ConcurrentUse(t *testing.T) {
	var (
		mu  sync.Mutex
		buf bytes.Buffer
		wg  sync.WaitGroup
	)

	logger := Make(&lockedWriter{mu: &mu, w: &buf}, WithFormat(FormatText))

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.With(slog.Int("worker", i)).Info("work")
		}()
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 16 {
		t.Errorf("expected 16 lines, got %d", n)
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}
