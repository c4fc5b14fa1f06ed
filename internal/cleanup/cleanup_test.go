package cleanup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"onlyu-media/internal/objects"
	"onlyu-media/internal/queue"
)

type fakeRemover struct {
	err   error
	calls []string
}

func (f *fakeRemover) Remove(_ context.Context, canonicalPath string) (objects.Handle, error) {
	f.calls = append(f.calls, canonicalPath)
	return objects.Handle{}, f.err
}

type fakePurger struct {
	err    error
	purged []string
}

func (f *fakePurger) Purge(_ context.Context, id string) error {
	f.purged = append(f.purged, id)
	return f.err
}

func TestParseMessage(t *testing.T) {
	valid, _ := queue.EncodeMessage(queue.Message{ObjectPath: "/objects/a.png", RequestID: "r1"})
	noPath, _ := queue.EncodeMessage(queue.Message{RequestID: "r2"})

	tests := []struct {
		name    string
		body    string
		wantErr func(error) bool
	}{
		{name: "valid", body: string(valid), wantErr: func(err error) bool { return err == nil }},
		{name: "empty", body: "  ", wantErr: func(err error) bool {
			var e ErrEmptyBody
			return errors.As(err, &e)
		}},
		{name: "bad json", body: "{oops", wantErr: func(err error) bool {
			var e ErrDecode
			return errors.As(err, &e) && e.Meta.BodySHA != ""
		}},
		{name: "missing path", body: string(noPath), wantErr: func(err error) bool {
			var e ErrMissingObjectPath
			return errors.As(err, &e) && e.RequestID == "r2"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseMessage(tt.body)
			if !tt.wantErr(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestComputeMetaEmpty(t *testing.T) {
	if meta := ComputeMeta(""); meta.BodyLen != 0 || meta.BodySHA != "" {
		t.Fatalf("expected zero meta, got %+v", meta)
	}
	if meta := ComputeMeta("abc"); meta.BodyLen != 3 || len(meta.BodySHA) != 64 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestHandleMessageOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    Outcome
		wantErr bool
	}{
		{name: "removed", want: OutcomeRemoved},
		{name: "already gone", err: fmt.Errorf("%w: x", objects.ErrNotFound), want: OutcomeGone},
		{name: "invalid path", err: fmt.Errorf("%w: x", objects.ErrInvalidPath), want: OutcomeGone},
		{name: "storage failure", err: errors.New("backend down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remover := &fakeRemover{err: tt.err}
			got, err := HandleMessage(context.Background(), remover, nil, queue.Message{ObjectPath: "/objects/a.png"})
			if tt.wantErr {
				var procErr ErrProcess
				if !errors.As(err, &procErr) || procErr.ObjectPath != "/objects/a.png" {
					t.Fatalf("expected ErrProcess, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tt.want {
				t.Fatalf("outcome = %q, want %q", got, tt.want)
			}
			if len(remover.calls) != 1 || remover.calls[0] != "/objects/a.png" {
				t.Fatalf("unexpected remove calls %v", remover.calls)
			}
		})
	}
}

func TestHandleMessageWithoutRemover(t *testing.T) {
	if _, err := HandleMessage(context.Background(), nil, nil, queue.Message{ObjectPath: "/objects/a"}); err == nil {
		t.Fatalf("expected error without remover")
	}
}

func TestHandleMessagePurgesRecord(t *testing.T) {
	msg := queue.Message{ObjectPath: "/objects/a.png", ContentID: "c1"}

	purger := &fakePurger{}
	got, err := HandleMessage(context.Background(), &fakeRemover{err: objects.ErrNotFound}, purger, msg)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != OutcomeGone || len(purger.purged) != 1 || purger.purged[0] != "c1" {
		t.Fatalf("outcome %q purged %v", got, purger.purged)
	}

	failing := &fakePurger{err: errors.New("db down")}
	if _, err := HandleMessage(context.Background(), &fakeRemover{}, failing, msg); err == nil {
		t.Fatalf("expected purge failure to surface")
	}

	skipped := &fakePurger{}
	if _, err := HandleMessage(context.Background(), &fakeRemover{}, skipped, queue.Message{ObjectPath: "/objects/a.png"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(skipped.purged) != 0 {
		t.Fatalf("expected no purge without content id")
	}
}
