// Package fixture serves a self-contained copy of the OSA request wizard.
//
// The page has the same field ids, input masks and Next buttons as the real
// application, so the form check can run without the app's dev server:
//
//	srv, err := fixture.Start("127.0.0.1:0")
//	...
//	defer srv.Close(ctx)
//	// point the runner at srv.URL
package fixture

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"
)

// PagePath is where the wizard is served.
const PagePath = "/get-officials"

//go:embed static
var assets embed.FS

// Assets exposes the embedded page and scripts, rooted at the static
// directory.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		return assets
	}
	return sub
}

// Handler returns the fixture routes: the wizard at PagePath, its scripts
// under /static/ and a redirect from / to the wizard.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PagePath, servePage)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(Assets())))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, PagePath, http.StatusFound)
	})
	return mux
}

func servePage(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(Assets(), "get-officials.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page)
}

// Server is a running fixture server.
type Server struct {
	// URL is the base URL, without a trailing slash
	URL string

	srv  *http.Server
	done chan error
}

// Start listens on addr and serves Handler in the background. Use port 0
// to pick a free port.
func Start(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &Server{
		URL: "http://" + ln.Addr().String(),
		srv: &http.Server{
			Handler:           Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		done: make(chan error, 1),
	}

	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	return s, nil
}

// Close shuts the server down gracefully, waiting for in-flight requests
// until ctx is done.
func (s *Server) Close(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down fixture server: %w", err)
	}
	return <-s.done
}
