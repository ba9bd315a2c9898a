package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	prev := Logf
	defer func() { Logf = prev }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("range stage rms %.4f", 1.0)
	if got != "range stage rms %.4f" {
		t.Errorf("replacement logger not invoked, got %q", got)
	}

	// nil installs a no-op rather than leaving a nil func
	called := false
	SetLogger(func(string, ...interface{}) { called = true })
	SetLogger(nil)
	Logf("dropped")
	if called {
		t.Error("no-op logger must not invoke the previous callback")
	}
}

func TestLogfDefaultNotNil(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should default to a usable logger")
	}
}
