package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newServer(t *testing.T, modules map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text, ok := modules[r.URL.Path]
		if !ok {
			http.NotFound(w, r)

			return
		}

		_, _ = w.Write([]byte(text))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_Get(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/prod/module1.txt": "[Q1] hello",
	})

	c, err := New(WithBaseURL(srv.URL + "/prod/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := c.Get(context.Background(), "module1.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if text != "[Q1] hello" {
		t.Errorf("text = %q", text)
	}
}

func TestClient_GetStatus(t *testing.T) {
	srv := newServer(t, nil)

	c, err := New(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Get(context.Background(), "missing.txt")
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("error = %v, want %v", err, ErrStatus)
	}

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not a *Error", err)
	}

	if v, ok := fe.Attr("status"); !ok || v.Int64() != http.StatusNotFound {
		t.Errorf("status attr = %v, %v", v, ok)
	}
}

func TestClient_GetTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(WithBaseURL(base))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Get(context.Background(), "x.txt"); !errors.Is(err, ErrTransport) {
		t.Errorf("error = %v, want %v", err, ErrTransport)
	}
}

func TestClient_GetTimeout(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Get(context.Background(), "slow.txt")
	if !errors.Is(err, ErrTransport) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want %v wrapping %v", err, ErrTransport, context.DeadlineExceeded)
	}
}

func TestClient_URL(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := c.URL("module1.txt")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}

	if want := DefaultBaseURL + "module1.txt"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}

	for _, name := range []string{"", "/", "../secret", "dir/"} {
		if _, err := c.URL(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("URL(%q) error = %v, want %v", name, err, ErrInvalidName)
		}
	}
}

func TestNew_InvalidBase(t *testing.T) {
	for _, base := range []string{"ftp://example.com/", "://bad", "relative/path"} {
		if _, err := New(WithBaseURL(base)); !errors.Is(err, ErrInvalidBase) {
			t.Errorf("New(%q) error = %v, want %v", base, err, ErrInvalidBase)
		}
	}
}

func TestClient_GetAll(t *testing.T) {
	var inflight, peak atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		defer inflight.Add(-1)

		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)

		_, _ = w.Write([]byte("[" + strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/")) + "]"))
	}))
	t.Cleanup(srv.Close)

	c, err := New(WithBaseURL(srv.URL), WithConcurrency(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	names := []string{"a", "b", "c", "d", "e"}

	results, err := c.GetAll(context.Background(), names...)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	for i, r := range results {
		if r.Name != names[i] || r.Text != "["+strings.ToUpper(names[i])+"]" {
			t.Errorf("result %d = %+v", i, r)
		}
	}

	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestClient_GetAllError(t *testing.T) {
	srv := newServer(t, map[string]string{"/a": "[A]"})

	c, err := New(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := c.GetAll(context.Background(), "a", "missing")
	if !errors.Is(err, ErrStatus) {
		t.Errorf("error = %v, want %v", err, ErrStatus)
	}

	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}
