package core

import (
	"context"
	"testing"
)

func TestOriginContext(t *testing.T) {
	if got := OriginFromContext(context.Background()); got != (Origin{}) {
		t.Errorf("empty context origin = %+v", got)
	}

	want := Origin{IPAddress: "192.0.2.10", UserAgent: "curl/8.5"}
	ctx := ContextWithOrigin(context.Background(), want)
	if got := OriginFromContext(ctx); got != want {
		t.Errorf("origin = %+v, want %+v", got, want)
	}
}
