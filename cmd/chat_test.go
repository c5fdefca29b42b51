package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/chat"
	"github.com/spigell/pathfinder/internal/jobsearch"
)

type fakeConversation struct {
	mu        sync.Mutex
	submitted []string
	uploaded  []string
	opened    []int
	resets    int
	records   []jobsearch.HistoryRecord
	err       error
}

func (f *fakeConversation) Submit(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, text)
	return f.err
}

func (f *fakeConversation) Upload(_ context.Context, doc *jobsearch.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, doc.Name)
	return f.err
}

func (f *fakeConversation) OpenHistory(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, id)
	return f.err
}

func (f *fakeConversation) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return f.err
}

func (f *fakeConversation) History() []jobsearch.HistoryRecord {
	return f.records
}

func writeResume(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"), 0o600); err != nil {
		t.Fatalf("writing resume: %v", err)
	}
	return path
}

func TestHandleInputDispatch(t *testing.T) {
	resume := writeResume(t, "cv.pdf")

	tests := []struct {
		name      string
		line      string
		submitted []string
		uploaded  []string
		opened    []int
		resets    int
		wantErr   error
	}{
		{name: "free text", line: "  Go Developer ", submitted: []string{"Go Developer"}},
		{name: "upload", line: "/upload " + resume, uploaded: []string{"cv.pdf"}},
		{name: "upload first of many", line: "/upload " + resume + " /tmp/other.pdf", uploaded: []string{"cv.pdf"}},
		{name: "history by id", line: "/history #7", opened: []int{7}},
		{name: "new", line: "/new", resets: 1},
		{name: "quit", line: "/quit", wantErr: errExit},
		{name: "help", line: "/help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := &fakeConversation{}
			var out bytes.Buffer

			err := handleInput(context.Background(), conv, tt.line, &out, zap.NewNop())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if strings.Join(conv.submitted, "|") != strings.Join(tt.submitted, "|") {
				t.Fatalf("unexpected submitted: %v", conv.submitted)
			}
			if strings.Join(conv.uploaded, "|") != strings.Join(tt.uploaded, "|") {
				t.Fatalf("unexpected uploaded: %v", conv.uploaded)
			}
			if len(conv.opened) != len(tt.opened) || (len(tt.opened) > 0 && conv.opened[0] != tt.opened[0]) {
				t.Fatalf("unexpected opened: %v", conv.opened)
			}
			if conv.resets != tt.resets {
				t.Fatalf("expected %d resets, got %d", tt.resets, conv.resets)
			}
		})
	}
}

func TestHandleInputExplainsRefusals(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "busy", err: chat.ErrBusy, want: "Still working"},
		{name: "unexpected upload", err: chat.ErrUnexpectedUpload, want: "not expecting a resume"},
		{name: "unknown record", err: chat.ErrUnknownHistoryRecord, want: "no such search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := &fakeConversation{err: tt.err}
			var out bytes.Buffer

			if err := handleInput(context.Background(), conv, "hello", &out, zap.NewNop()); err != nil {
				t.Fatalf("expected refusal to be explained, got %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("expected %q in output, got %q", tt.want, out.String())
			}
		})
	}

	conv := &fakeConversation{err: errors.New("boom")}
	if err := handleInput(context.Background(), conv, "hello", &bytes.Buffer{}, zap.NewNop()); err == nil {
		t.Fatal("expected unexpected errors to be returned")
	}
}

func TestHandleInputRejectsUnreadableUpload(t *testing.T) {
	conv := &fakeConversation{}
	var out bytes.Buffer

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	if err := handleInput(context.Background(), conv, "/upload "+missing, &out, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.uploaded) != 0 {
		t.Fatalf("expected nothing uploaded, got %v", conv.uploaded)
	}
	if !strings.Contains(out.String(), "Cannot read") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := handleInput(context.Background(), conv, "/upload", &out, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Usage") {
		t.Fatalf("expected usage, got %q", out.String())
	}
}

func TestHistoryPicker(t *testing.T) {
	original := pickHistory
	t.Cleanup(func() { pickHistory = original })

	records := []jobsearch.HistoryRecord{{ID: 3, Query: "Go Developer", JobCount: 4}}

	var offered []jobsearch.HistoryRecord
	pickHistory = func(r []jobsearch.HistoryRecord) (int, bool, error) {
		offered = r
		return r[0].ID, true, nil
	}

	conv := &fakeConversation{records: records}
	if err := handleInput(context.Background(), conv, "/history", &bytes.Buffer{}, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offered) != 1 || len(conv.opened) != 1 || conv.opened[0] != 3 {
		t.Fatalf("expected record 3 to be opened, offered %v opened %v", offered, conv.opened)
	}

	pickHistory = func([]jobsearch.HistoryRecord) (int, bool, error) { return 0, false, nil }
	conv = &fakeConversation{records: records}
	if err := handleInput(context.Background(), conv, "/history", &bytes.Buffer{}, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.opened) != 0 {
		t.Fatalf("expected back to open nothing, got %v", conv.opened)
	}

	var out bytes.Buffer
	conv = &fakeConversation{}
	if err := handleInput(context.Background(), conv, "/history", &out, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No searches yet") {
		t.Fatalf("expected empty history notice, got %q", out.String())
	}
}

func TestNewGreeter(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	ctx := context.Background()

	greeter, err := newGreeter(ctx, nil, zap.NewNop())
	if err != nil || greeter != nil {
		t.Fatalf("expected no greeter without config, got %v %v", greeter, err)
	}

	greeter, err = newGreeter(ctx, &AIConfig{Enabled: false}, zap.NewNop())
	if err != nil || greeter != nil {
		t.Fatalf("expected no greeter when disabled, got %v %v", greeter, err)
	}

	if _, err := newGreeter(ctx, &AIConfig{Enabled: true, Provider: "openai"}, zap.NewNop()); err == nil {
		t.Fatal("expected unsupported provider error")
	}

	if _, err := newGreeter(ctx, &AIConfig{Enabled: true}, zap.NewNop()); err == nil {
		t.Fatal("expected error without gemini section")
	}

	if _, err := newGreeter(ctx, &AIConfig{Enabled: true, Gemini: &GeminiConfig{}}, zap.NewNop()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestNewClient(t *testing.T) {
	client := newClient(&Config{APIURL: "http://backend:8000/", UserAgent: "tester", Timeout: 5e9}, zap.NewNop())

	if client.APIURL != "http://backend:8000" {
		t.Fatalf("unexpected api url: %q", client.APIURL)
	}
	if client.UserAgent != "tester" {
		t.Fatalf("unexpected user agent: %q", client.UserAgent)
	}
	if client.HTTPClient.Timeout.Seconds() != 5 {
		t.Fatalf("unexpected timeout: %s", client.HTTPClient.Timeout)
	}
}
