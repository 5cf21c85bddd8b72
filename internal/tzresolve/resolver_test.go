package tzresolve

import (
	"context"
	"errors"
	"testing"

	"todohook/pkg/logx"
)

func TestResolveStoredPreference(t *testing.T) {
	t.Parallel()
	src := SourceFunc(func(_ context.Context, _ string) (string, error) {
		return "Europe/Berlin", nil
	})
	r := New(src, "UTC", logx.Nop())
	if got := r.Resolve(context.Background(), "u1"); got != "Europe/Berlin" {
		t.Fatalf("Resolve = %q, want Europe/Berlin", got)
	}
}

func TestResolveFallbacks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  SourceFunc
		def  string
		want string
	}{
		{
			name: "no preference uses configured default",
			src: SourceFunc(func(_ context.Context, _ string) (string, error) {
				return "", nil
			}),
			def:  "Europe/London",
			want: "Europe/London",
		},
		{
			name: "unrecognized preference uses default",
			src: SourceFunc(func(_ context.Context, _ string) (string, error) {
				return "Mars/Olympus", nil
			}),
			def:  "UTC",
			want: "UTC",
		},
		{
			name: "source error uses default",
			src: SourceFunc(func(_ context.Context, _ string) (string, error) {
				return "", errors.New("boom")
			}),
			def:  "UTC",
			want: "UTC",
		},
		{
			name: "empty default falls back to builtin",
			src: SourceFunc(func(_ context.Context, _ string) (string, error) {
				return "", nil
			}),
			def:  "",
			want: DefaultZone,
		},
		{
			name: "broken configured default falls back to UTC",
			src: SourceFunc(func(_ context.Context, _ string) (string, error) {
				return "", nil
			}),
			def:  "Not/AZone",
			want: "UTC",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.src, tt.def, logx.Nop())
			zone, loc := r.Location(context.Background(), "u1")
			if zone != tt.want {
				t.Fatalf("zone = %q, want %q", zone, tt.want)
			}
			if loc == nil {
				t.Fatal("loc is nil")
			}
		})
	}
}

func TestResolveCachesPerAccount(t *testing.T) {
	t.Parallel()
	calls := 0
	src := SourceFunc(func(_ context.Context, _ string) (string, error) {
		calls++
		return "Europe/Berlin", nil
	})
	r := New(src, "UTC", logx.Nop())

	for i := 0; i < 3; i++ {
		r.Resolve(context.Background(), "u1")
	}
	if calls != 1 {
		t.Fatalf("source called %d times, want 1", calls)
	}

	r.Resolve(context.Background(), "u2")
	if calls != 2 {
		t.Fatalf("source called %d times after second account, want 2", calls)
	}
}
