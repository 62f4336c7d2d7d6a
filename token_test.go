package smolnet

import (
	"context"
	"testing"
)

// TestTokenContext tests token context manipulation functions
func TestTokenContext(t *testing.T) {
	token := &Token{
		AccessToken: "test-access-token",
		Type:        "Bearer",
		Expires:     3600,
	}

	tokenCtx := token.Use(context.Background())

	if got := tokenFrom(tokenCtx); got != token {
		t.Errorf("tokenFrom() = %v, want %v", got, token)
	}
	if got := tokenFrom(context.Background()); got != nil {
		t.Errorf("tokenFrom(background) = %v, want nil", got)
	}

	// other keys delegate to the parent context
	type keyType string
	parent := context.WithValue(context.Background(), keyType("k"), "v")
	if v := token.Use(parent).Value(keyType("k")); v != "v" {
		t.Errorf("Value(other) = %v, want v", v)
	}
}

func TestTokenAuthorization(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"", "Bearer abc"},
		{"bearer", "Bearer abc"},
		{"Bearer", "Bearer abc"},
		{"MAC", "MAC abc"},
	}

	for _, tt := range tests {
		tok := &Token{AccessToken: "abc", Type: tt.typ}
		if got := tok.authorization(); got != tt.want {
			t.Errorf("authorization() with type %q = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
