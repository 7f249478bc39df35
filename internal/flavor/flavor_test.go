package flavor

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in       string
		wantID   int64
		wantKind Kind
		wantErr  bool
	}{
		{in: "1", wantID: 1},
		{in: "42", wantID: 42},
		{in: "0", wantID: 0},
		{in: "-3", wantID: -3},
		{in: "abc", wantKind: KindInvalidInput, wantErr: true},
		{in: "12abc", wantKind: KindInvalidInput, wantErr: true},
		{in: "1.5", wantKind: KindInvalidInput, wantErr: true},
		{in: "", wantKind: KindInvalidInput, wantErr: true},
		{in: " 7", wantKind: KindInvalidInput, wantErr: true},
		{in: "99999999999", wantKind: KindNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := ParseID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%q) = %d, want error", tt.in, id)
				}
				if got := KindOf(err); got != tt.wantKind {
					t.Fatalf("ParseID(%q) kind = %s, want %s", tt.in, got, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) unexpected error: %v", tt.in, err)
			}
			if id != tt.wantID {
				t.Fatalf("ParseID(%q) = %d, want %d", tt.in, id, tt.wantID)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", notFound("get flavor"), KindNotFound},
		{"store failure", storeFailure("list flavors", plain), KindStoreFailure},
		{"invalid input", &Error{Kind: KindInvalidInput, Op: "decode"}, KindInvalidInput},
		{"wrapped", fmt.Errorf("handler: %w", notFound("delete flavor")), KindNotFound},
		{"unclassified", plain, KindStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := storeFailure("get flavor", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the driver error")
	}
	if want := "get flavor: store_failure: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if IsNotFound(err) {
		t.Error("store failure reported as not found")
	}
	if !IsNotFound(notFound("get flavor")) {
		t.Error("not found not reported as not found")
	}
}

func TestStore_Unavailable(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["list"] = s.List(ctx)
	_, checks["get"] = s.Get(ctx, 1)
	_, checks["create"] = s.Create(ctx, Input{Name: "Mint"})
	_, checks["update"] = s.Update(ctx, 1, Input{Name: "Mint"})
	checks["delete"] = s.Delete(ctx, 1)

	for op, err := range checks {
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s: expected ErrUnavailable, got %v", op, err)
		}
		if KindOf(err) != KindStoreFailure {
			t.Errorf("%s: expected store failure kind, got %s", op, KindOf(err))
		}
	}
}
