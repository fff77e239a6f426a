package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicebridge/internal/config"
	"invoicebridge/internal/domain"
	"invoicebridge/internal/handler"
	"invoicebridge/internal/router"
	"invoicebridge/internal/service"
	"invoicebridge/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func setup(t *testing.T) (*gin.Engine, service.AuthService, *mocks.MockImportService) {
	t.Helper()
	authSvc := service.NewAuthService(config.JWTConfig{
		Secret:            "router-test-secret",
		AccessTokenExpiry: time.Minute,
		Issuer:            "invoicebridge-test",
	})
	importSvc := new(mocks.MockImportService)
	r := router.Setup(
		authSvc,
		handler.NewInvoiceHandler(importSvc, 1<<20),
		handler.NewPurchaseHandler(importSvc),
		handler.NewHealthHandler(okPinger{}),
		[]string{"http://localhost:3000"},
	)
	return r, authSvc, importSvc
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r, _, _ := setup(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}
}

func TestRouter_APIRequiresToken(t *testing.T) {
	r, _, importSvc := setup(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/purchases/"+uuid.NewString(), http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	importSvc.AssertNotCalled(t, "GetPurchase")
}

func TestRouter_TokenScopesTenant(t *testing.T) {
	r, authSvc, importSvc := setup(t)

	tenantID := uuid.New()
	purchaseID := uuid.New()
	tok, err := authSvc.GenerateToken(service.TokenInput{TenantID: tenantID, UserID: uuid.New()})
	require.NoError(t, err)

	importSvc.On("GetPurchase", mock.Anything, tenantID, purchaseID).
		Return(&domain.Purchase{ID: purchaseID, TenantID: tenantID}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/purchases/"+purchaseID.String(), http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	importSvc.AssertExpectations(t)
}
