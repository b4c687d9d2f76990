package provider

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeAPI is an httptest server that records request bodies per path and
// replies with canned JSON.
type fakeAPI struct {
	*httptest.Server

	mu     sync.Mutex
	bodies map[string][]string
	routes map[string]fakeRoute
}

type fakeRoute struct {
	status int
	body   string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		bodies: make(map[string][]string),
		routes: make(map[string]fakeRoute),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// handle registers a reply for "METHOD /path".
func (f *fakeAPI) handle(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = fakeRoute{status: status, body: body}
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.bodies[key] = append(f.bodies[key], string(body))
	route, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"error":{"message":"no route for `+key+`"}}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(route.status)
	_, _ = io.WriteString(w, route.body)
}

// requests returns the bodies received on route.
func (f *fakeAPI) requests(route string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies[route]...)
}
