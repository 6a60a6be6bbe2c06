package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	apoiadosvc "github.com/lojasocial-app/lojasocial-backend/internal/apoiados"
	basketsvc "github.com/lojasocial-app/lojasocial-backend/internal/baskets"
	productsvc "github.com/lojasocial-app/lojasocial-backend/internal/products"
	"github.com/lojasocial-app/lojasocial-backend/pkg/config"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
	pkgredis "github.com/lojasocial-app/lojasocial-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubApoiadoService struct{}

func (stubApoiadoService) CreateApoiado(context.Context, apoiadosvc.CreateInput) (*apoiadosvc.ApoiadoDTO, error) {
	return &apoiadosvc.ApoiadoDTO{ID: uuid.New()}, nil
}

func (stubApoiadoService) UpdateApoiado(context.Context, uuid.UUID, apoiadosvc.UpdateInput) (*apoiadosvc.ApoiadoDTO, error) {
	return &apoiadosvc.ApoiadoDTO{}, nil
}

func (stubApoiadoService) SetStatus(context.Context, uuid.UUID, enums.ApoiadoStatus) (*apoiadosvc.ApoiadoDTO, error) {
	return &apoiadosvc.ApoiadoDTO{}, nil
}

func (stubApoiadoService) GetApoiado(context.Context, uuid.UUID) (*apoiadosvc.ApoiadoDTO, error) {
	return &apoiadosvc.ApoiadoDTO{}, nil
}

func (stubApoiadoService) ListApoiados(context.Context, apoiadosvc.ListFilters, pagination.Params) (*apoiadosvc.ApoiadoListResult, error) {
	return &apoiadosvc.ApoiadoListResult{}, nil
}

type stubProductService struct{}

func (stubProductService) IntakeDonation(context.Context, uuid.UUID, productsvc.IntakeInput) ([]productsvc.ProductDTO, error) {
	return []productsvc.ProductDTO{{ID: uuid.New()}}, nil
}

func (stubProductService) UpdateProduct(context.Context, uuid.UUID, productsvc.UpdateInput) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{}, nil
}

func (stubProductService) RemoveProduct(context.Context, uuid.UUID) error {
	return nil
}

func (stubProductService) GetProduct(context.Context, uuid.UUID) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{}, nil
}

func (stubProductService) ListProducts(context.Context, productsvc.ListFilters, pagination.Params) (*productsvc.ProductListResult, error) {
	return &productsvc.ProductListResult{}, nil
}

func (stubProductService) AvailabilityGroups(context.Context) ([]productsvc.AvailabilityGroupDTO, error) {
	return nil, nil
}

type stubBasketService struct {
	created    int
	delivered  int
	lastCreate basketsvc.CreateInput
}

func (s *stubBasketService) Create(_ context.Context, input basketsvc.CreateInput) (*basketsvc.BasketDTO, error) {
	s.created++
	s.lastCreate = input
	return &basketsvc.BasketDTO{ID: uuid.New(), Status: string(enums.BasketStatusScheduled)}, nil
}

func (s *stubBasketService) Deliver(context.Context, uuid.UUID, uuid.UUID) (*basketsvc.BasketDTO, error) {
	s.delivered++
	return &basketsvc.BasketDTO{Status: string(enums.BasketStatusDelivered)}, nil
}

func (s *stubBasketService) Cancel(context.Context, uuid.UUID, uuid.UUID) (*basketsvc.BasketDTO, error) {
	return &basketsvc.BasketDTO{}, nil
}

func (s *stubBasketService) Reschedule(context.Context, basketsvc.RescheduleInput) (*basketsvc.BasketDTO, error) {
	return &basketsvc.BasketDTO{}, nil
}

func (s *stubBasketService) MarkNotCollected(context.Context, uuid.UUID, uuid.UUID) (*basketsvc.BasketDTO, error) {
	return &basketsvc.BasketDTO{}, nil
}

func (s *stubBasketService) SetPreparation(context.Context, uuid.UUID, enums.BasketStatus, uuid.UUID) (*basketsvc.BasketDTO, error) {
	return &basketsvc.BasketDTO{}, nil
}

func (s *stubBasketService) EditProducts(context.Context, basketsvc.EditProductsInput) (*basketsvc.BasketDTO, error) {
	return &basketsvc.BasketDTO{}, nil
}

func (s *stubBasketService) Get(context.Context, uuid.UUID) (*basketsvc.BasketDTO, error) {
	return &basketsvc.BasketDTO{}, nil
}

func (s *stubBasketService) List(context.Context, basketsvc.ListFilters, pagination.Params) (*basketsvc.BasketListResult, error) {
	return &basketsvc.BasketListResult{}, nil
}

func newTestRouter(baskets *stubBasketService) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*pkgredis.Client)(nil),
		stubApoiadoService{},
		stubProductService{},
		baskets,
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(&stubBasketService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-LojaSocial-Env") != "dev" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-LojaSocial-Env"))
	}
}

func TestCreateBasketRoute(t *testing.T) {
	stub := &stubBasketService{}
	router := newTestRouter(stub)

	body := map[string]any{
		"apoiado_id":   uuid.NewString(),
		"product_ids":  []string{uuid.NewString()},
		"scheduled_at": time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		"origin":       "manual",
	}
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/baskets", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.created != 1 {
		t.Fatalf("expected service called once, got %d", stub.created)
	}
}

func TestCreateBasketWithoutScheduledAtDefaults(t *testing.T) {
	stub := &stubBasketService{}
	router := newTestRouter(stub)

	body := map[string]any{
		"apoiado_id":  uuid.NewString(),
		"product_ids": []string{uuid.NewString()},
		"origin":      "manual",
	}
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/baskets", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.created != 1 {
		t.Fatalf("expected service called once, got %d", stub.created)
	}
	if !stub.lastCreate.ScheduledAt.IsZero() {
		t.Fatalf("expected zero scheduled date so the service can default it, got %v", stub.lastCreate.ScheduledAt)
	}
}

func TestDeliverBasketRequiresStaffHeader(t *testing.T) {
	stub := &stubBasketService{}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/baskets/"+uuid.NewString()+"/deliver", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if stub.delivered != 0 {
		t.Fatalf("service should not run without staff context")
	}
}

func TestDeliverBasketWithStaffHeader(t *testing.T) {
	stub := &stubBasketService{}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/baskets/"+uuid.NewString()+"/deliver", nil)
	req.Header.Set("X-Staff-Id", uuid.NewString())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.delivered != 1 {
		t.Fatalf("expected deliver called once, got %d", stub.delivered)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(&stubBasketService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
