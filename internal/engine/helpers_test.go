package engine_test

import (
	"context"
	"sync"
	"time"

	"github.com/mrz1836/slicer/internal/backend"
	"github.com/mrz1836/slicer/internal/clock"
	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/engine"
)

// scriptedBackend replies per role from a queue; the last reply of a role
// repeats once its queue is exhausted.
type scriptedBackend struct {
	mu       sync.Mutex
	replies  map[string][]string
	errs     map[string]error
	requests []backend.Request
}

func newScriptedBackend() *scriptedBackend {
	return &scriptedBackend{
		replies: make(map[string][]string),
		errs:    make(map[string]error),
	}
}

func (s *scriptedBackend) on(role string, replies ...string) *scriptedBackend {
	s.replies[role] = append(s.replies[role], replies...)
	return s
}

func (s *scriptedBackend) fail(role string, err error) *scriptedBackend {
	s.errs[role] = err
	return s
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Complete(_ context.Context, req *backend.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, *req)
	if err := s.errs[req.Role]; err != nil {
		return "", err
	}
	queue := s.replies[req.Role]
	if len(queue) == 0 {
		return "", nil
	}
	reply := queue[0]
	if len(queue) > 1 {
		s.replies[req.Role] = queue[1:]
	}
	return reply, nil
}

// calls returns the requests made for role, in order.
func (s *scriptedBackend) calls(role string) []backend.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []backend.Request
	for _, r := range s.requests {
		if r.Role == role {
			out = append(out, r)
		}
	}
	return out
}

func testSpec(dir string) *config.Spec {
	spec := config.DefaultSpec()
	spec.Goal = "Add a greeting file"
	spec.WorkingDirectory = dir
	spec.CheckCommands = []string{"true"}
	spec.MaxSlices = 1
	spec.MaxAttemptsPerSlice = 2
	return spec
}

func newEngine(b backend.Backend, opts ...engine.Option) *engine.Engine {
	base := []engine.Option{
		engine.WithClock(clock.Fixed{T: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}),
		engine.WithRunID(func() string { return "run-test" }),
	}
	return engine.New(b, append(base, opts...)...)
}

const (
	onePlan = `{"slices":[{"id":"S1","title":"Create greeting","objective":"Add hello.txt","acceptance":["hello.txt exists"],"check_commands":["test -f hello.txt"],"files_hint":["README.md"]}]}`

	twoPlans = `{"slices":[
		{"id":"S1","title":"First","objective":"Do the first thing"},
		{"id":"S2","title":"Second","objective":"Do the second thing"}]}`

	selectReadme = `{"files_to_read":["README.md"],"files_to_create":["hello.txt"]}`

	createHello = "Here you go:\n```json\n{\"summary\":\"add hello\",\"changes\":[{\"path\":\"hello.txt\",\"action\":\"upsert\",\"content\":\"hello\\n\"}]}\n```"

	reviewPass = `{"pass":true,"issues":[],"required_fixes":[]}`
	reviewFail = `{"pass":false,"issues":["greeting is rude"],"required_fixes":["say please"]}`
)
