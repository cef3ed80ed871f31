package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/noodle-dev/noodle-bridge/internal/logging"
	"github.com/noodle-dev/noodle-bridge/internal/securestore"
)

// Operations the host may invoke.
const (
	OpStoreSecureValue  = "store_secure_value"
	OpGetSecureValue    = "get_secure_value"
	OpExecuteNoodle     = "execute_noodle"
	OpExecutePythonFile = "execute_python_file"
	OpExecuteNoodleFile = "execute_noodle_file"
)

// Request is one host command, a single JSON line on stdin.
type Request struct {
	ID   string            `json:"id"`
	Op   string            `json:"op"`
	Args map[string]string `json:"args,omitempty"`
}

// Response answers one Request, a single JSON line on stdout.
// Found is only set for get_secure_value, so the host can tell an
// absent key apart from an empty value.
type Response struct {
	ID     string `json:"id"`
	OK     bool   `json:"ok"`
	Result string `json:"result,omitempty"`
	Found  *bool  `json:"found,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Executor runs scripts on behalf of the host.
type Executor interface {
	ExecuteInline(ctx context.Context, code string) (string, error)
	ExecutePythonFile(ctx context.Context, path string) (string, error)
	ExecuteNoodleFile(ctx context.Context, path string) (string, error)
}

// Server dispatches host commands read as newline-delimited JSON.
// Each request runs on its own goroutine; responses come back in
// completion order, matched to requests by id. No failure is fatal to
// the server — every error becomes an error response.
type Server struct {
	Store securestore.Store
	Exec  Executor
	Log   logging.Logger
}

// Serve reads requests from in until EOF, answering on out. It returns
// once all in-flight requests have been answered. Requests have no
// size cap; script text is fully buffered either way.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for {
		line, err := r.ReadString('\n')

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			var req Request
			if jerr := json.Unmarshal([]byte(trimmed), &req); jerr != nil {
				s.reply(&mu, out, Response{OK: false, Error: "malformed request: " + jerr.Error()})
			} else {
				g.Go(func() error {
					s.Log.Debugf("dispatch %s (id=%s)", req.Op, req.ID)
					s.reply(&mu, out, s.handle(ctx, req))
					return nil
				})
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			if werr := g.Wait(); err == nil {
				err = werr
			}
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	switch req.Op {
	case OpStoreSecureValue:
		if err := s.Store.Set(req.Args["key"], req.Args["value"]); err != nil {
			return fail(req, err)
		}
		return Response{ID: req.ID, OK: true}

	case OpGetSecureValue:
		val, found, err := s.Store.Get(req.Args["key"])
		if err != nil {
			return fail(req, err)
		}
		return Response{ID: req.ID, OK: true, Result: val, Found: &found}

	case OpExecuteNoodle:
		out, err := s.Exec.ExecuteInline(ctx, req.Args["code"])
		if err != nil {
			return fail(req, err)
		}
		return Response{ID: req.ID, OK: true, Result: out}

	case OpExecutePythonFile:
		out, err := s.Exec.ExecutePythonFile(ctx, req.Args["path"])
		if err != nil {
			return fail(req, err)
		}
		return Response{ID: req.ID, OK: true, Result: out}

	case OpExecuteNoodleFile:
		out, err := s.Exec.ExecuteNoodleFile(ctx, req.Args["path"])
		if err != nil {
			return fail(req, err)
		}
		return Response{ID: req.ID, OK: true, Result: out}

	default:
		return Response{ID: req.ID, OK: false, Error: fmt.Sprintf("unknown op: %q", req.Op)}
	}
}

func fail(req Request, err error) Response {
	return Response{ID: req.ID, OK: false, Error: err.Error()}
}

func (s *Server) reply(mu *sync.Mutex, out io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		// Response fields are plain strings; this should not happen.
		s.Log.Errorf("encode response: %v", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	out.Write(append(data, '\n'))
}
