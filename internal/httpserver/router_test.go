package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tshirt-orders/internal/clock"
	"tshirt-orders/internal/domain"
	"tshirt-orders/internal/events"
	orderrepo "tshirt-orders/internal/repository/order"
	cartsvc "tshirt-orders/internal/service/cart"
	deadlinesvc "tshirt-orders/internal/service/deadline"
	ordersvc "tshirt-orders/internal/service/order"
	redemptionsvc "tshirt-orders/internal/service/redemption"
)

type memOrderRepo struct {
	nextID int64
	orders map[int64]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[int64]*domain.Order{}}
}

func (m *memOrderRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memOrderRepo) Create(_ context.Context, in orderrepo.CreateOrderInput) (domain.Order, error) {
	for _, ord := range m.orders {
		if ord.BuyerKey == in.BuyerKey && ord.Status.Pending() {
			return domain.Order{}, domain.ErrDuplicatePendingOrder
		}
	}
	m.nextID++
	lines := make([]domain.OrderLine, len(in.Lines))
	for i, line := range in.Lines {
		line.ItemID = i + 1
		lines[i] = line
	}
	ord := domain.Order{
		ID:            m.nextID,
		BuyerKey:      in.BuyerKey,
		DepositorName: in.DepositorName,
		Status:        in.Status,
		TotalAmount:   in.TotalAmount,
		CreatedAt:     in.CreatedAt,
		Lines:         lines,
	}
	m.orders[ord.ID] = &ord
	copied := ord
	return copied, nil
}

func (m *memOrderRepo) HasPendingByBuyer(_ context.Context, buyerKey string) (bool, error) {
	for _, ord := range m.orders {
		if ord.BuyerKey == buyerKey && ord.Status.Pending() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	ord, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *ord
	return &copied, nil
}

func (m *memOrderRepo) GetForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	ord, err := m.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return *ord, nil
}

func (m *memOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.Status) error {
	m.orders[id].Status = status
	return nil
}

func (m *memOrderRepo) UpdateDepositorName(_ context.Context, id int64, name string) error {
	m.orders[id].DepositorName = name
	return nil
}

func (m *memOrderRepo) ReplaceLines(_ context.Context, orderID int64, lines []domain.OrderLine) error {
	replaced := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		line.ItemID = i + 1
		replaced[i] = line
	}
	m.orders[orderID].Lines = replaced
	return nil
}

func (m *memOrderRepo) ListByBuyer(_ context.Context, buyerKey string) ([]domain.Order, error) {
	var out []domain.Order
	for _, ord := range m.orders {
		if ord.BuyerKey == buyerKey {
			out = append(out, *ord)
		}
	}
	return out, nil
}

func (m *memOrderRepo) Search(_ context.Context, filter orderrepo.SearchFilter) ([]domain.Order, error) {
	var out []domain.Order
	for _, ord := range m.orders {
		if filter.Status != "" && ord.Status != filter.Status {
			continue
		}
		out = append(out, *ord)
	}
	return out, nil
}

func (m *memOrderRepo) ListStaleReviewing(_ context.Context, cutoff time.Time) ([]int64, error) {
	return nil, nil
}

func (m *memOrderRepo) DemoteReviewing(_ context.Context, id int64, cutoff time.Time) (bool, error) {
	return false, nil
}

func (m *memOrderRepo) ClaimRedemption(_ context.Context, id int64, at time.Time) (bool, error) {
	ord, ok := m.orders[id]
	if !ok || ord.Status != domain.StatusConfirmed || ord.RedeemedAt != nil {
		return false, nil
	}
	stamped := at
	ord.RedeemedAt = &stamped
	return true, nil
}

func (m *memOrderRepo) StatusStats(_ context.Context) (map[domain.Status]int, error) {
	stats := map[domain.Status]int{}
	for _, ord := range m.orders {
		stats[ord.Status]++
	}
	return stats, nil
}

func (m *memOrderRepo) VariantStats(_ context.Context) ([]orderrepo.VariantCount, error) {
	return nil, nil
}

type memConfirmationRepo struct {
	nextID  int64
	records map[int64]domain.ConfirmationRecord
}

func newMemConfirmationRepo() *memConfirmationRepo {
	return &memConfirmationRepo{records: map[int64]domain.ConfirmationRecord{}}
}

func (m *memConfirmationRepo) Create(_ context.Context, rec domain.ConfirmationRecord) (domain.ConfirmationRecord, error) {
	if _, dup := m.records[rec.OrderID]; dup {
		return domain.ConfirmationRecord{}, domain.ErrInvalidTransition
	}
	m.nextID++
	rec.ID = m.nextID
	m.records[rec.OrderID] = rec
	return rec, nil
}

func (m *memConfirmationRepo) GetByOrderID(_ context.Context, orderID int64) (*domain.ConfirmationRecord, error) {
	rec, ok := m.records[orderID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memConfirmationRepo) List(_ context.Context) ([]domain.ConfirmationRecord, error) {
	var out []domain.ConfirmationRecord
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

type memScheduleRepo struct {
	entries map[string]domain.DeadlineEntry
}

func (m *memScheduleRepo) GetByTitle(_ context.Context, title string) (*domain.DeadlineEntry, error) {
	entry, ok := m.entries[title]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return &entry, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := log.New(io.Discard, "", 0)
	clk := clock.NewFixed(time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))
	schedules := &memScheduleRepo{entries: map[string]domain.DeadlineEntry{
		domain.ScheduleOrderDeadline: {Title: domain.ScheduleOrderDeadline, Day: "Day 1", EndTime: "20260301"},
		domain.SchedulePickupWindow:  {Title: domain.SchedulePickupWindow, Day: "Day 2", EndTime: "20260310"},
	}}

	orders := newMemOrderRepo()
	confirmations := newMemConfirmationRepo()
	gate := deadlinesvc.New(schedules, logger)
	pub := &events.MockPublisher{}

	deps := Deps{
		Orders:     ordersvc.New(orders, confirmations, gate, pub, clk, logger),
		Cart:       cartsvc.New(orders, gate, clk),
		Redemption: redemptionsvc.New(orders, redemptionsvc.PlainCodec{}, pub, clk),
		Deadlines:  gate,
		Clock:      clk,
	}
	return buildRouter(logger, nil, deps)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, buyer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if buyer != "" {
		req.Header.Set("X-Buyer-Key", buyer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "buyer-1", gin.H{
		"depositorName": "Kim",
		"lines": []gin.H{
			{"size": "M", "color": "Black", "quantity": 2},
			{"size": "L", "color": "White", "quantity": 1},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if created.TotalAmount != 27000 {
		t.Fatalf("total = %d, want 27000", created.TotalAmount)
	}

	base := fmt.Sprintf("/orders/%d", created.ID)
	if rec := doJSON(t, router, http.MethodPost, base+"/reviewing", "buyer-1", nil); rec.Code != http.StatusOK {
		t.Fatalf("reviewing status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/paid", created.ID), "", nil); rec.Code != http.StatusOK {
		t.Fatalf("paid status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, router, http.MethodPost, base+"/confirm", "buyer-1", nil); rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, base+"/code", "buyer-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code status = %d, body %s", rec.Code, rec.Body.String())
	}
	var codeResp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &codeResp); err != nil {
		t.Fatalf("decode code: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/admin/redemptions/verify", "", gin.H{"code": codeResp.Code})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Second scan of the same code conflicts.
	rec = doJSON(t, router, http.MethodPost, "/admin/redemptions/verify", "", gin.H{"code": codeResp.Code})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second verify status = %d, want 409", rec.Code)
	}
}

func TestWrongBuyerReadsAsNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "buyer-1", gin.H{
		"lines": []gin.H{{"size": "M", "color": "Black", "quantity": 1}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d", rec.Code)
	}
	var created domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/orders/%d", created.ID), "buyer-2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDuplicatePendingOrderConflicts(t *testing.T) {
	router := newTestRouter(t)
	body := gin.H{"lines": []gin.H{{"size": "M", "color": "Black", "quantity": 1}}}

	if rec := doJSON(t, router, http.MethodPost, "/orders", "buyer-1", body); rec.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d", rec.Code)
	}
	rec := doJSON(t, router, http.MethodPost, "/orders", "buyer-1", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second submit status = %d, want 409", rec.Code)
	}
	var resp struct {
		Error errorBody `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error.Code != "DUPLICATE_PENDING_ORDER" {
		t.Fatalf("error code = %q", resp.Error.Code)
	}
}

func TestEditItemsConservesQuantityOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "buyer-1", gin.H{
		"lines": []gin.H{
			{"size": "M", "color": "Black", "quantity": 2},
			{"size": "L", "color": "White", "quantity": 1},
		},
	})
	var created domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	path := fmt.Sprintf("/orders/%d/items", created.ID)
	rec = doJSON(t, router, http.MethodPut, path, "buyer-1", gin.H{
		"lines": []gin.H{{"size": "XL", "color": "Black", "quantity": 3}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPut, path, "buyer-1", gin.H{
		"lines": []gin.H{{"size": "XL", "color": "Black", "quantity": 2}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("quantity change status = %d, want 400", rec.Code)
	}
}

func TestEditAfterPaymentFlowsIntoConfirmation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", "buyer-1", gin.H{
		"depositorName": "Kim",
		"lines": []gin.H{
			{"size": "M", "color": "Black", "quantity": 2},
			{"size": "L", "color": "White", "quantity": 1},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	base := fmt.Sprintf("/orders/%d", created.ID)
	if rec := doJSON(t, router, http.MethodPost, base+"/reviewing", "buyer-1", nil); rec.Code != http.StatusOK {
		t.Fatalf("reviewing status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/paid", created.ID), "", nil); rec.Code != http.StatusOK {
		t.Fatalf("paid status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Re-splitting the three shirts is still allowed after payment landed.
	rec = doJSON(t, router, http.MethodPut, base+"/items", "buyer-1", gin.H{
		"lines": []gin.H{{"size": "L", "color": "Black", "quantity": 3}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, base+"/confirm", "buyer-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", rec.Code, rec.Body.String())
	}
	var receipt domain.ConfirmationRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if len(receipt.Lines) != 1 {
		t.Fatalf("receipt lines = %+v, want the edited single line", receipt.Lines)
	}
	line := receipt.Lines[0]
	if line.Size != "L" || line.Color != "Black" || line.Quantity != 3 {
		t.Fatalf("receipt line = %+v, want L/Black x3", line)
	}
	if receipt.TotalAmount != created.TotalAmount {
		t.Fatalf("receipt total = %d, want the submit-time total %d", receipt.TotalAmount, created.TotalAmount)
	}
}

func TestDeadlinesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/deadlines", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Windows []deadlinesvc.Window `json:"windows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Windows) != 2 || !resp.Windows[0].Open {
		t.Fatalf("unexpected windows: %+v", resp.Windows)
	}
}
