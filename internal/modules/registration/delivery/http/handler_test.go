package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/registration/dto"
	registration "anoa.com/eventhub/internal/modules/registration/service"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeService struct {
	registration.RegistrationService
	registered bool
}

func (f *fakeService) ExportCSV(ctx context.Context, userID, eventID uuid.UUID) (*dto.ExportFile, error) {
	return &dto.ExportFile{FileName: "camp-registrations-20250101.csv", Content: []byte("\ufeff\"Name\"\r\n")}, nil
}

func (f *fakeService) Register(ctx context.Context, userID, eventID uuid.UUID, req dto.RegisterRequest) (*entity.Registration, error) {
	if f.registered {
		return nil, apperror.ErrConflict
	}
	f.registered = true
	return &entity.Registration{EventID: eventID, UserID: userID}, nil
}

func setupRouter(svc registration.RegistrationService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	r.POST("/events/:id/registrations", h.Register)
	r.GET("/events/:id/registrations/export", h.ExportCSV)
	return r
}

func TestExportCSVHeaders(t *testing.T) {
	r := setupRouter(&fakeService{}, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/"+uuid.NewString()+"/registrations/export", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="camp-registrations-20250101.csv"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "\ufeff") {
		t.Fatalf("body lost the BOM")
	}
}

func TestRegisterStatusCodes(t *testing.T) {
	r := setupRouter(&fakeService{}, uuid.New())
	path := "/events/" + uuid.NewString() + "/registrations"

	tests := []struct {
		name string
		path string
		want int
	}{
		{"created", path, http.StatusCreated},
		{"duplicate", path, http.StatusConflict},
		{"bad event id", "/events/nope/registrations", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(`{"answers":{}}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, w.Code, w.Body.String())
			}
		})
	}
}
