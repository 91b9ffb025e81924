package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pavelanni/classroom/internal/model"
)

func TestText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.py":
			_, _ = w.Write([]byte("print('hello')\n"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(100*time.Millisecond, 32)
	ctx := context.Background()

	got, err := c.Text(ctx, srv.URL+"/ok.py")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "print('hello')\n" {
		t.Errorf("Text() = %q", got)
	}

	tests := []struct {
		name    string
		url     string
		wantErr error
		wantMsg string
	}{
		{"not found", srv.URL + "/missing", model.ErrUpstreamFailure, "Failed: 404"},
		{"too large", srv.URL + "/big", model.ErrUpstreamFailure, "exceeds 32 bytes"},
		{"timeout", srv.URL + "/slow", model.ErrUpstreamFailure, ""},
		{"file scheme", "file:///etc/passwd", model.ErrInvalidArgument, "unsupported url"},
		{"relative", "/ok.py", model.ErrInvalidArgument, "unsupported url"},
		{"garbage", "http://%zz", model.ErrInvalidArgument, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Text(ctx, tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(0, 0)
	if c.maxBytes != DefaultMaxBytes {
		t.Errorf("maxBytes = %d, want %d", c.maxBytes, DefaultMaxBytes)
	}
	if c.http.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", c.http.Timeout)
	}
}

func TestTextSharesConcurrentFetches(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte("shared"))
	}))
	defer srv.Close()

	c := New(5*time.Second, 0)
	const callers = 5
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Text(context.Background(), srv.URL+"/tutor.py")
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range callers {
		if errs[i] != nil || results[i] != "shared" {
			t.Errorf("caller %d: got %q, %v", i, results[i], errs[i])
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("upstream hit %d times, want 1", n)
	}
}

func TestTextCallerCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()
	defer close(release)

	c := New(5*time.Second, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Text(ctx, srv.URL+"/x")
	if !errors.Is(err, model.ErrUpstreamFailure) {
		t.Fatalf("expected %v, got %v", model.ErrUpstreamFailure, err)
	}
}
