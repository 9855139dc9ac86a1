package profile

import "testing"

func TestNew(t *testing.T) {
	mode, path, quiet := New(WithMode("cpu"), nil, WithPath("/tmp/p"), WithQuiet(true))()
	if mode != "cpu" || path != "/tmp/p" || !quiet {
		t.Errorf("New() = %q, %q, %v", mode, path, quiet)
	}

	mode, path, quiet = New(WithPath("/a"), WithPath("/b"))()
	if mode != "" || path != "/b" || quiet {
		t.Errorf("New() = %q, %q, %v", mode, path, quiet)
	}
}

func TestConfig_StartWithoutMode(t *testing.T) {
	p := New(WithPath(t.TempDir())).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}

func TestConfig_StartUnknownMode(t *testing.T) {
	p := New(WithMode("bogus"), WithPath(t.TempDir())).Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}
