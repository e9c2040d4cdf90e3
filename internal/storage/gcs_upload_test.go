package storage

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

// ── stub GCS writer ───────────────────────────────────────────────────────────

type stubWriter struct {
	written strings.Builder
	closed  bool
}

func (w *stubWriter) Write(p []byte) (int, error) { return w.written.Write(p) }

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestCommitOrAbort_ReadErrorAbortsWithoutCommit(t *testing.T) {
	wc := &stubWriter{}
	aborted := false
	readErr := errors.New("disk read failed")

	err := commitOrAbort(wc, func() { aborted = true }, iotest.ErrReader(readErr))

	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error to be wrapped, got %v", err)
	}
	if !aborted {
		t.Error("writer context must be cancelled on copy failure")
	}
	if wc.closed {
		t.Error("Close commits the object and must not run after a copy failure")
	}
}

func TestCommitOrAbort_SuccessCommits(t *testing.T) {
	wc := &stubWriter{}
	aborted := false

	if err := commitOrAbort(wc, func() { aborted = true }, strings.NewReader("jpeg")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wc.closed {
		t.Error("expected Close to commit the object")
	}
	if aborted {
		t.Error("abort must not run on success")
	}
	if wc.written.String() != "jpeg" {
		t.Errorf("written = %q", wc.written.String())
	}
}

func TestBackendNames(t *testing.T) {
	if got := (&GCSStore{}).BackendName(); got != "Google Cloud Storage" {
		t.Errorf("GCS name = %q", got)
	}
	if got := (&S3Store{}).BackendName(); got != "S3" {
		t.Errorf("S3 name = %q", got)
	}
}
