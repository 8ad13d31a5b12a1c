package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anoa.com/eventhub/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeLineService struct {
	callbackErr error
}

func (f *fakeLineService) LoginURL(userID uuid.UUID) (string, error) {
	return "https://access.line.me/authorize", nil
}

func (f *fakeLineService) Callback(ctx context.Context, code, state string) error {
	return f.callbackErr
}

func (f *fakeLineService) Unbind(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func TestCallbackRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "bound", want: "https://app.test/settings?line=bound"},
		{name: "error", err: apperror.ErrConflict, want: "https://app.test/settings?line=error&reason=conflict"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewLineHandler(&fakeLineService{callbackErr: tc.err}, "https://app.test")
			r := gin.New()
			r.GET("/api/line/callback", h.Callback)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/line/callback?code=c&state=s", nil)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", w.Code)
			}
			if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, tc.want) {
				t.Fatalf("unexpected redirect %q", loc)
			}
		})
	}
}
