// Package remotetest runs an in-memory realtime database behind the same
// REST surface the remote client speaks, for tests.
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dwalast/drugguide/pkg/repo/remote"
	"github.com/gin-gonic/gin"
)

type failure struct {
	status int
	times  int
}

type Server struct {
	mu       sync.Mutex
	root     any
	seq      int
	delay    time.Duration
	failures map[string]*failure
	requests map[string]int
	http     *httptest.Server
}

func New(t testing.TB) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		root:     map[string]any{},
		failures: map[string]*failure{},
		requests: map[string]int{},
	}
	engine := gin.New()
	engine.NoRoute(s.handle)
	s.http = httptest.NewServer(engine)
	t.Cleanup(s.http.Close)
	return s
}

func (s *Server) URL() string {
	return s.http.URL
}

// Store returns a remote client pointed at this server.
func (s *Server) Store(opts ...remote.Option) *remote.Impl {
	return remote.NewWithAddr(s.URL(), opts...)
}

func (s *Server) Close() {
	s.http.Close()
}

// Seed replaces the node at path with value, normalized through JSON.
func (s *Server) Seed(path string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(split(path), v)
}

// Data returns the node at path, nil when it does not exist.
func (s *Server) Data(path string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(split(path))
}

// Decode unmarshals the node at path into out.
func (s *Server) Decode(path string, out any) error {
	raw, err := json.Marshal(s.Data(path))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Fail makes the next times requests of method on path answer status.
func (s *Server) Fail(method, path string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+strings.Trim(path, "/")] = &failure{status: status, times: times}
}

func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests counts requests of method on path, all methods when method is "".
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	path = strings.Trim(path, "/")
	if method != "" {
		return s.requests[method+" "+path]
	}
	total := 0
	for k, n := range s.requests {
		if strings.HasSuffix(k, " "+path) {
			total += n
		}
	}
	return total
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func (s *Server) get(segs []string) any {
	node := s.root
	for _, seg := range segs {
		switch n := node.(type) {
		case map[string]any:
			node = n[seg]
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n) {
				return nil
			}
			node = n[idx]
		default:
			return nil
		}
	}
	return node
}

func (s *Server) set(segs []string, v any) {
	if len(segs) == 0 {
		if v == nil {
			v = map[string]any{}
		}
		s.root = v
		return
	}
	parent, ok := s.root.(map[string]any)
	if !ok {
		parent = map[string]any{}
		s.root = parent
	}
	for _, seg := range segs[:len(segs)-1] {
		child, ok := parent[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			parent[seg] = child
		}
		parent = child
	}
	last := segs[len(segs)-1]
	if v == nil {
		delete(parent, last)
		return
	}
	parent[last] = v
}

func (s *Server) handle(ctx *gin.Context) {
	path := strings.TrimSuffix(strings.Trim(ctx.Request.URL.Path, "/"), ".json")
	method := ctx.Request.Method

	s.mu.Lock()
	key := method + " " + path
	s.requests[key]++
	delay := s.delay
	if f, ok := s.failures[key]; ok && f.times > 0 {
		f.times--
		s.mu.Unlock()
		ctx.JSON(f.status, gin.H{"error": http.StatusText(f.status)})
		return
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Request.Context().Done():
			return
		}
	}

	var body any
	if method == http.MethodPut || method == http.MethodPost || method == http.MethodPatch {
		if err := json.NewDecoder(ctx.Request.Body).Decode(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data; couldn't parse JSON object."})
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	segs := split(path)
	switch method {
	case http.MethodGet:
		ctx.JSON(http.StatusOK, s.query(s.get(segs), ctx))
	case http.MethodPut:
		s.set(segs, body)
		ctx.JSON(http.StatusOK, body)
	case http.MethodPost:
		s.seq++
		name := fmt.Sprintf("-N%08d", s.seq)
		s.set(append(segs, name), body)
		ctx.JSON(http.StatusOK, gin.H{"name": name})
	case http.MethodPatch:
		fields, ok := body.(map[string]any)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data; couldn't parse JSON object."})
			return
		}
		for k, v := range fields {
			s.set(append(append([]string{}, segs...), k), v)
		}
		ctx.JSON(http.StatusOK, fields)
	case http.MethodDelete:
		s.set(segs, nil)
		ctx.JSON(http.StatusOK, nil)
	default:
		ctx.Status(http.StatusMethodNotAllowed)
	}
}

func (s *Server) query(node any, ctx *gin.Context) any {
	if ctx.Query("shallow") == "true" {
		if m, ok := node.(map[string]any); ok {
			keys := make(map[string]any, len(m))
			for k := range m {
				keys[k] = true
			}
			return keys
		}
		return node
	}
	orderBy, equalTo := unquote(ctx.Query("orderBy")), unquote(ctx.Query("equalTo"))
	if orderBy == "" || ctx.Query("equalTo") == "" {
		return node
	}
	m, ok := node.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	out := map[string]any{}
	for k, v := range m {
		child, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if fmt.Sprint(child[orderBy]) == equalTo {
			out[k] = child
		}
	}
	return out
}

func unquote(v string) string {
	if u, err := strconv.Unquote(v); err == nil {
		return u
	}
	return v
}
