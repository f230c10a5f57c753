package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/internal/orders"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

type orderStub struct {
	cancelReason string
	cancelErr    error
	returnReason string
}

func (s *orderStub) Get(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPlaced}, nil
}

func (s *orderStub) List(context.Context, uuid.UUID, int, int) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (s *orderStub) Histories(context.Context, uuid.UUID, uuid.UUID) ([]models.OrderStatusHistory, error) {
	return []models.OrderStatusHistory{}, nil
}

func (s *orderStub) Bill(context.Context, uuid.UUID, uuid.UUID) (*orders.BillView, error) {
	return &orders.BillView{}, nil
}

func (s *orderStub) Cancel(_ context.Context, _, _ uuid.UUID, reason string) error {
	s.cancelReason = reason
	return s.cancelErr
}

func (s *orderStub) RequestReturn(_ context.Context, _, _ uuid.UUID, reason string) error {
	s.returnReason = reason
	return nil
}

func withOrderParam(req *http.Request, orderID uuid.UUID) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestOrderCancelRequiresReason(t *testing.T) {
	stub := &orderStub{}
	handler := OrderCancel(stub, nil)

	req := withOrderParam(authedRequest(http.MethodPost, "/api/v1/orders/x/cancel", `{}`), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without reason got %d", resp.Code)
	}
	if stub.cancelReason != "" {
		t.Fatalf("cancel must not run without a reason")
	}
}

func TestOrderCancelPassesReasonThrough(t *testing.T) {
	stub := &orderStub{}
	handler := OrderCancel(stub, nil)

	req := withOrderParam(authedRequest(http.MethodPost, "/api/v1/orders/x/cancel", `{"reason":"  found it cheaper elsewhere  "}`), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.cancelReason != "found it cheaper elsewhere" {
		t.Fatalf("expected trimmed reason, got %q", stub.cancelReason)
	}
}

func TestOrderCancelSurfacesStateConflict(t *testing.T) {
	stub := &orderStub{
		cancelErr: pkgerrors.New(pkgerrors.CodeStateConflict, "order is already completed and can no longer be cancelled"),
	}
	handler := OrderCancel(stub, nil)

	req := withOrderParam(authedRequest(http.MethodPost, "/api/v1/orders/x/cancel", `{"reason":"too late"}`), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Message != "order is already completed and can no longer be cancelled" {
		t.Fatalf("unexpected public message %q", payload.Error.Message)
	}
}

type transitionStub struct {
	to   enums.OrderStatus
	note *string
}

func (s *transitionStub) Transition(_ context.Context, _ uuid.UUID, to enums.OrderStatus, note *string) error {
	s.to = to
	s.note = note
	return nil
}

func TestAdminOrderStatusParsesTarget(t *testing.T) {
	stub := &transitionStub{}
	handler := AdminOrderStatus(stub, nil)

	req := withOrderParam(authedRequest(http.MethodPost, "/api/admin/v1/orders/x/status", `{"status":"delivering","note":"handed to courier"}`), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.to != enums.OrderStatusDelivering {
		t.Fatalf("expected delivering got %s", stub.to)
	}
	if stub.note == nil || *stub.note != "handed to courier" {
		t.Fatalf("note not passed through")
	}
}

func TestAdminOrderStatusRejectsUnknownStatus(t *testing.T) {
	stub := &transitionStub{}
	handler := AdminOrderStatus(stub, nil)

	req := withOrderParam(authedRequest(http.MethodPost, "/api/admin/v1/orders/x/status", `{"status":"teleported"}`), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if stub.to != "" {
		t.Fatalf("transition must not run for unknown status")
	}
}
