package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { SetGlobal(nil, false) })

	var buf bytes.Buffer
	Configure(&buf, false)
	Get().Debug("hidden")
	Get().Info("shown", "table", "roads")

	if IsDebug() {
		t.Error("IsDebug() = true; want false")
	}
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %s", out)
	}
	if !strings.Contains(out, "table=roads") {
		t.Errorf("expected structured attribute in output, got: %s", out)
	}

	buf.Reset()
	Configure(&buf, true)
	Get().Debug("visible")
	if !IsDebug() {
		t.Error("IsDebug() = false; want true")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug message, got: %s", buf.String())
	}
}
