package downloader

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildZip returns an in-memory zip holding files (name -> content)
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, data []byte, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// fakeServer answers requests for fixed URLs from memory
type fakeServer struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	statuses map[string]int
	gets     map[string]int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		bodies:   map[string][]byte{},
		statuses: map[string]int{},
		gets:     map[string]int{},
	}
}

func (s *fakeServer) serve(url string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[url] = body
}

func (s *fakeServer) fail(url string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[url] = status
}

func (s *fakeServer) downloads(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets[url]
}

func (s *fakeServer) totalDownloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.gets {
		total += n
	}
	return total
}

func (s *fakeServer) RoundTrip(r *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := r.URL.String()
	if r.Method == http.MethodGet {
		s.gets[url]++
	}

	resp := &http.Response{
		Header:  http.Header{},
		Request: r,
		Body:    io.NopCloser(strings.NewReader("")),
	}
	if status, ok := s.statuses[url]; ok {
		resp.StatusCode = status
		resp.Status = http.StatusText(status)
		return resp, nil
	}
	body, ok := s.bodies[url]
	if !ok {
		resp.StatusCode = http.StatusNotFound
		resp.Status = "404 Not Found"
		return resp, nil
	}

	resp.StatusCode = http.StatusOK
	resp.Status = "200 OK"
	resp.ContentLength = int64(len(body))
	if r.Method == http.MethodGet {
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp, nil
}

func (s *fakeServer) client() *http.Client {
	return &http.Client{Transport: s}
}
