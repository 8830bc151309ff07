package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func jsonLogger() *Logger {
	l := New("foons", "basearg", 1)
	c := DefaultConfig()
	c.Formatter = "json"
	c.JSONFormat.DisableTimestamp = true
	l.Configure(c)
	return l
}

func TestLog(t *testing.T) {
	l := jsonLogger()

	var b bytes.Buffer
	l.SetOutput(&b)
	l.Info("test")

	expect := `{"basearg":1,"level":"info","msg":"test","ns":"foons"}` + "\n"
	if b.String() != expect {
		t.Fatal("unexpected log:", b.String())
	}
}

func TestContextLog(t *testing.T) {
	l := jsonLogger()

	var b bytes.Buffer
	l.SetOutput(&b)

	ctx := context.WithValue(context.Background(), ScanIDKey, "scan-1")
	l.Info("test", ctx)

	expect := `{"basearg":1,"level":"info","msg":"test","ns":"foons","scanID":"scan-1"}` + "\n"
	if b.String() != expect {
		t.Fatal("unexpected log:", b.String())
	}
}

func TestErrorFieldLog(t *testing.T) {
	l := jsonLogger()

	var b bytes.Buffer
	l.SetOutput(&b)

	err := errors.New("fooerr")
	l.Info("test", err)

	expect := `{"basearg":1,"error":"fooerr","level":"info","msg":"test","ns":"foons"}` + "\n"
	if b.String() != expect {
		t.Fatal("unexpected log:", b.String())
	}
}

func TestSubLogger(t *testing.T) {
	l := jsonLogger()

	var b bytes.Buffer
	l.SetOutput(&b)

	l.Sub("child", "job", 3).Info("test")

	expect := `{"basearg":1,"job":3,"level":"info","msg":"test","ns":"child"}` + "\n"
	if b.String() != expect {
		t.Fatal("unexpected log:", b.String())
	}
}

func TestLevelFilter(t *testing.T) {
	l := jsonLogger()

	var b bytes.Buffer
	l.SetOutput(&b)
	l.SetLevel("error")
	l.Info("hidden")
	l.Error("shown")

	if strings.Contains(b.String(), "hidden") || !strings.Contains(b.String(), "shown") {
		t.Fatal("unexpected log:", b.String())
	}
}
