package speciesref

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"validation", validationErr("at least two species must be provided, got %d", 1), 2},
		{"missing tool", &Error{Kind: KindToolMissing, Path: "FastK", Err: errors.New("not on $PATH")}, 3},
		{"failed tool", &Error{Kind: KindToolFailed, Path: "gffread", Err: errors.New("exit status 1")}, 4},
		{"filesystem", fsErr("ref.tx.0.fasta", errors.New("permission denied")), 5},
		{"timeout", &Error{Kind: KindTimeout, Path: "FastK", Err: errors.New("still running")}, 6},
		{"canceled", &Error{Kind: KindCanceled, Err: context.Canceled}, 130},
		{"wrapped", errors.Wrap(fsErr("ref", errors.New("busy")), "cleanup"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := &Error{Kind: KindToolFailed, Path: "/usr/bin/FastK", Err: errors.New("exit status 2")}
	if got, want := err.Error(), "tool failed: /usr/bin/FastK: exit status 2"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = &Error{Kind: KindCanceled, Err: context.Canceled}
	if got, want := err.Error(), "canceled: context canceled"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("Error doesn't unwrap to its cause")
	}
}
