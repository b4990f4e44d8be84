// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// mockExecutor reports binaries in availableBins as installed.
type mockExecutor struct {
	availableBins map[string]bool
	runFunc       func(Command) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, c Command) error {
	if m.runFunc != nil {
		return m.runFunc(c)
	}
	return nil
}

func binaries(exec Executor, names ...string) []Binary {
	out := make([]Binary, len(names))
	for i, n := range names {
		out[i] = Binary{Bin: n, Exec: exec}
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		installed map[string]bool
		wantName  string
		wantErr   bool
	}{
		{
			name:      "first candidate preferred",
			installed: map[string]bool{"sips": true, "convert": true},
			wantName:  "sips",
		},
		{
			name:      "fallback to second candidate",
			installed: map[string]bool{"convert": true},
			wantName:  "convert",
		},
		{
			name:      "none installed",
			installed: map[string]bool{},
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{availableBins: tt.installed}
			got, err := Select(context.Background(), "image conversion", "install imagemagick", binaries(exec, "sips", "convert"))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrMissingTool) {
					t.Errorf("error should match ErrMissingTool, got: %v", err)
				}
				var mt *MissingToolError
				if !errors.As(err, &mt) {
					t.Fatalf("error should be *MissingToolError, got %T", err)
				}
				if strings.Join(mt.Tried, ",") != "sips,convert" {
					t.Errorf("tried = %v, want [sips convert]", mt.Tried)
				}
				if !strings.Contains(err.Error(), "install imagemagick") {
					t.Errorf("error should carry the remedy, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name() != tt.wantName {
				t.Errorf("got %q, want %q", got.Name(), tt.wantName)
			}
		})
	}
}

func TestSelect_EmptyCandidates(t *testing.T) {
	_, err := Select[Binary](context.Background(), "pdf merging", "", nil)
	if !errors.Is(err, ErrMissingTool) {
		t.Fatalf("expected ErrMissingTool, got %v", err)
	}
}

func TestRunCaptured(t *testing.T) {
	exec := &mockExecutor{runFunc: func(c Command) error {
		_, _ = c.Stderr.Write([]byte("Syntax Error: bad xref\n"))
		return errors.New("exit status 1")
	}}

	err := RunCaptured(context.Background(), exec, "pdfunite", Command{Name: "pdfunite", Args: []string{"a.pdf", "out.pdf"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrToolFailed) {
		t.Errorf("error should match ErrToolFailed, got: %v", err)
	}
	var ee *ExecError
	if !errors.As(err, &ee) {
		t.Fatalf("error should be *ExecError, got %T", err)
	}
	if ee.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1 for a non-exec error", ee.ExitCode)
	}
	if !strings.Contains(err.Error(), "bad xref") {
		t.Errorf("error should include captured output, got: %v", err)
	}
}

func TestRunCaptured_Success(t *testing.T) {
	exec := &mockExecutor{}
	if err := RunCaptured(context.Background(), exec, "pdftk", Command{Name: "pdftk"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExecErrorMessage(t *testing.T) {
	err := &ExecError{Tool: "pdflatex", ExitCode: 1, LogPath: "build/report_compile.log"}
	want := "pdflatex failed with exit code 1 (see build/report_compile.log)"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Error("zero timeout should not set a deadline")
	}

	ctx2, cancel2 := WithTimeout(context.Background(), time.Minute)
	defer cancel2()
	if _, ok := ctx2.Deadline(); !ok {
		t.Error("positive timeout should set a deadline")
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "pdftk", Args: []string{"a.pdf", "cat", "output", "b.pdf"}}
	if got := c.String(); got != "pdftk a.pdf cat output b.pdf" {
		t.Errorf("got %q", got)
	}
}
