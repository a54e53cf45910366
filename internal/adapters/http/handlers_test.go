package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	httpadapter "github.com/crestbridge/placement-portal/services/inventory-engine/internal/adapters/http"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/application"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/contracts"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/ports"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestInventoryLifecycleHTTPContract(t *testing.T) {
	t.Parallel()

	router := newContractRouter()
	deal := uuid.New()

	lotRes := doJSON(t, router, http.MethodPost, "/inventory/v1/deals/"+deal.String()+"/lots", staffHeaders(""), contracts.AddLotRequest{
		SourceID:   "seller-1",
		UnitsTotal: 150,
		UnitCost:   "10.00",
		Currency:   "USD",
		AcquiredAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	if lotRes.Code != http.StatusCreated {
		t.Fatalf("expected 201 for add lot, got %d: %s", lotRes.Code, lotRes.Body.String())
	}

	holdRes := doJSON(t, router, http.MethodPost, "/inventory/v1/deals/"+deal.String()+"/holds", investorHeaders("idem-hold-1"), contracts.PlaceHoldRequest{
		InvestorID:        "investor-1",
		RequestedUnits:    40,
		ProposedUnitPrice: "12.50",
		HoldMinutes:       30,
	})
	if holdRes.Code != http.StatusCreated {
		t.Fatalf("expected 201 for place hold, got %d: %s", holdRes.Code, holdRes.Body.String())
	}
	var hold contracts.ReservationResponse
	decodeData(t, holdRes, &hold)
	if hold.Status != "pending" || hold.RequestedUnits != 40 {
		t.Fatalf("unexpected hold payload: %+v", hold)
	}
	if len(hold.LotItems) != 1 || hold.LotItems[0].UnitsDrawn != 40 {
		t.Fatalf("expected one lot item of 40 units, got %+v", hold.LotItems)
	}

	getRes := doJSON(t, router, http.MethodGet, "/inventory/v1/holds/"+hold.ReservationID, investorHeaders(""), nil)
	if getRes.Code != http.StatusOK {
		t.Fatalf("expected 200 for get reservation, got %d", getRes.Code)
	}

	finalizeRes := doJSON(t, router, http.MethodPost, "/inventory/v1/holds/"+hold.ReservationID+"/finalize", staffHeaders(""), nil)
	if finalizeRes.Code != http.StatusCreated {
		t.Fatalf("expected 201 for finalize, got %d: %s", finalizeRes.Code, finalizeRes.Body.String())
	}
	var alloc contracts.AllocationResponse
	decodeData(t, finalizeRes, &alloc)
	if alloc.Units != 40 || alloc.UnitPrice != "12.5" {
		t.Fatalf("unexpected allocation payload: %+v", alloc)
	}
	if alloc.ReservationID != hold.ReservationID {
		t.Fatalf("expected allocation linked to reservation")
	}

	allocGet := doJSON(t, router, http.MethodGet, "/inventory/v1/allocations/"+alloc.AllocationID, investorHeaders(""), nil)
	if allocGet.Code != http.StatusOK {
		t.Fatalf("expected 200 for get allocation, got %d", allocGet.Code)
	}

	summaryRes := doJSON(t, router, http.MethodGet, "/inventory/v1/deals/"+deal.String()+"/summary", investorHeaders(""), nil)
	if summaryRes.Code != http.StatusOK {
		t.Fatalf("expected 200 for summary, got %d", summaryRes.Code)
	}
	var summary contracts.SummaryResponse
	decodeData(t, summaryRes, &summary)
	if summary.TotalUnits != 150 || summary.AllocatedUnits != 40 || summary.AvailableUnits != 110 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestPlaceHoldHTTPRejectsWithoutIdempotencyKey(t *testing.T) {
	t.Parallel()

	router := newContractRouter()
	deal := uuid.New()

	res := doJSON(t, router, http.MethodPost, "/inventory/v1/deals/"+deal.String()+"/holds", investorHeaders(""), contracts.PlaceHoldRequest{
		InvestorID:        "investor-1",
		RequestedUnits:    10,
		ProposedUnitPrice: "1.00",
		HoldMinutes:       30,
	})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", res.Code)
	}
	var out envelope
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if out.Code != "idempotency_key_required" {
		t.Fatalf("expected idempotency_key_required, got %s", out.Code)
	}
}

func TestHoldHTTPConflictOnInsufficientInventory(t *testing.T) {
	t.Parallel()

	router := newContractRouter()
	deal := uuid.New()

	lotRes := doJSON(t, router, http.MethodPost, "/inventory/v1/deals/"+deal.String()+"/lots", staffHeaders(""), contracts.AddLotRequest{
		SourceID:   "seller-1",
		UnitsTotal: 50,
		UnitCost:   "10.00",
		Currency:   "USD",
		AcquiredAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	if lotRes.Code != http.StatusCreated {
		t.Fatalf("expected 201 for add lot, got %d", lotRes.Code)
	}

	res := doJSON(t, router, http.MethodPost, "/inventory/v1/deals/"+deal.String()+"/holds", investorHeaders("idem-big"), contracts.PlaceHoldRequest{
		InvestorID:        "investor-1",
		RequestedUnits:    1000,
		ProposedUnitPrice: "1.00",
		HoldMinutes:       30,
	})
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 for oversized hold, got %d", res.Code)
	}
	var out envelope
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if out.Code != "insufficient_inventory" {
		t.Fatalf("expected insufficient_inventory, got %s", out.Code)
	}
}

func TestHTTPAuthAndPathValidation(t *testing.T) {
	t.Parallel()

	router := newContractRouter()

	noAuth := httptest.NewRequest(http.MethodGet, "/inventory/v1/deals/"+uuid.NewString()+"/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, noAuth)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}

	badUUID := doJSON(t, router, http.MethodGet, "/inventory/v1/holds/not-a-uuid", investorHeaders(""), nil)
	if badUUID.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed uuid, got %d", badUUID.Code)
	}

	missing := doJSON(t, router, http.MethodGet, "/inventory/v1/holds/"+uuid.NewString(), investorHeaders(""), nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown reservation, got %d", missing.Code)
	}

	health := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, health)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for healthz, got %d", rec.Code)
	}
}

func TestFinalizeHTTPRequiresStaffRole(t *testing.T) {
	t.Parallel()

	router := newContractRouter()
	deal := uuid.New()

	doJSON(t, router, http.MethodPost, "/inventory/v1/deals/"+deal.String()+"/lots", staffHeaders(""), contracts.AddLotRequest{
		SourceID:   "seller-1",
		UnitsTotal: 50,
		UnitCost:   "10.00",
		Currency:   "USD",
		AcquiredAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	holdRes := doJSON(t, router, http.MethodPost, "/inventory/v1/deals/"+deal.String()+"/holds", investorHeaders("idem-f"), contracts.PlaceHoldRequest{
		InvestorID:        "investor-1",
		RequestedUnits:    10,
		ProposedUnitPrice: "2.00",
		HoldMinutes:       30,
	})
	var hold contracts.ReservationResponse
	decodeData(t, holdRes, &hold)

	res := doJSON(t, router, http.MethodPost, "/inventory/v1/holds/"+hold.ReservationID+"/finalize", investorHeaders(""), nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for investor finalize, got %d", res.Code)
	}
}

func staffHeaders(idempotencyKey string) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer staff-1",
		"X-Actor-Role":  "staff",
	}
	if idempotencyKey != "" {
		h["Idempotency-Key"] = idempotencyKey
	}
	return h
}

func investorHeaders(idempotencyKey string) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer investor-1",
	}
	if idempotencyKey != "" {
		h["Idempotency-Key"] = idempotencyKey
	}
	return h
}

func doJSON(t *testing.T, router http.Handler, method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func newContractRouter() http.Handler {
	store := newContractStore()
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			HoldWindowMin:      5 * time.Minute,
			HoldWindowMax:      120 * time.Minute,
			HoldWindowStaffMax: 2880 * time.Minute,
		},
		Lots:         contractLots{store},
		Reservations: contractReservations{store},
		Allocations:  contractAllocations{store},
		Summaries:    contractSummaries{store},
		Outbox:       noopOutbox{},
		Idempotency:  &contractIdempotency{records: map[string]ports.IdempotencyRecord{}},
		Audit:        noopAudit{},
		Notifier:     noopNotifier{},
	})
	return httpadapter.NewRouter(httpadapter.NewHandler(svc))
}

// contractStore is a minimal in-memory backing store for the HTTP contract
// tests. State mutations for one deal are serialized by the shared mutex.
type contractStore struct {
	mu           sync.Mutex
	lots         map[uuid.UUID]domain.ShareLot
	reservations map[uuid.UUID]domain.Reservation
	resItems     map[uuid.UUID][]domain.ReservationLotItem
	allocations  map[uuid.UUID]domain.Allocation
	allocItems   map[uuid.UUID][]domain.AllocationLotItem
}

func newContractStore() *contractStore {
	return &contractStore{
		lots:         map[uuid.UUID]domain.ShareLot{},
		reservations: map[uuid.UUID]domain.Reservation{},
		resItems:     map[uuid.UUID][]domain.ReservationLotItem{},
		allocations:  map[uuid.UUID]domain.Allocation{},
		allocItems:   map[uuid.UUID][]domain.AllocationLotItem{},
	}
}

func (s *contractStore) dealLotsLocked(dealID uuid.UUID) []domain.ShareLot {
	lots := make([]domain.ShareLot, 0)
	for _, lot := range s.lots {
		if lot.DealID == dealID {
			lots = append(lots, lot)
		}
	}
	domain.SortLotsFIFO(lots)
	return lots
}

type contractLots struct{ s *contractStore }

func (c contractLots) Create(_ context.Context, lot domain.ShareLot) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.lots[lot.LotID] = lot
	return nil
}

func (c contractLots) GetByID(_ context.Context, lotID uuid.UUID) (domain.ShareLot, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	lot, ok := c.s.lots[lotID]
	if !ok {
		return domain.ShareLot{}, domain.ErrNotFound
	}
	return lot, nil
}

func (c contractLots) ListByDeal(_ context.Context, dealID uuid.UUID) ([]domain.ShareLot, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.dealLotsLocked(dealID), nil
}

type contractReservations struct{ s *contractStore }

func (c contractReservations) PlaceHold(_ context.Context, res domain.Reservation) (domain.Reservation, []domain.ReservationLotItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	draws, err := domain.PlanDraw(c.s.dealLotsLocked(res.DealID), res.RequestedUnits, res.CreatedAt)
	if err != nil {
		return domain.Reservation{}, nil, err
	}
	items := make([]domain.ReservationLotItem, 0, len(draws))
	for _, draw := range draws {
		lot := c.s.lots[draw.LotID]
		lot.UnitsRemaining -= draw.Units
		lot.Status = domain.LotStatusFor(lot.UnitsRemaining, lot.UnitsTotal)
		c.s.lots[draw.LotID] = lot
		items = append(items, domain.ReservationLotItem{
			ReservationID: res.ReservationID,
			LotID:         draw.LotID,
			UnitsDrawn:    draw.Units,
		})
	}
	c.s.reservations[res.ReservationID] = res
	c.s.resItems[res.ReservationID] = items
	return res, items, nil
}

func (c contractReservations) GetByID(_ context.Context, reservationID uuid.UUID) (domain.Reservation, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	res, ok := c.s.reservations[reservationID]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return res, nil
}

func (c contractReservations) ListItems(_ context.Context, reservationID uuid.UUID) ([]domain.ReservationLotItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return append([]domain.ReservationLotItem(nil), c.s.resItems[reservationID]...), nil
}

func (c contractReservations) ListExpired(_ context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	return nil, nil
}

func (c contractReservations) Release(_ context.Context, reservationID uuid.UUID, reason string, at time.Time) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	res, ok := c.s.reservations[reservationID]
	if !ok {
		return domain.ErrNotFound
	}
	if res.Status != domain.ReservationStatusPending {
		return domain.ErrReservationNotPending
	}
	for _, item := range c.s.resItems[reservationID] {
		lot := c.s.lots[item.LotID]
		lot.UnitsRemaining += item.UnitsDrawn
		lot.Status = domain.LotStatusFor(lot.UnitsRemaining, lot.UnitsTotal)
		c.s.lots[item.LotID] = lot
	}
	res.Status = reason
	res.UpdatedAt = at
	c.s.reservations[reservationID] = res
	return nil
}

type contractAllocations struct{ s *contractStore }

func (c contractAllocations) Finalize(_ context.Context, reservationID uuid.UUID, approvedBy string, at time.Time) (domain.Allocation, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	res, ok := c.s.reservations[reservationID]
	if !ok {
		return domain.Allocation{}, domain.ErrNotFound
	}
	switch res.Status {
	case domain.ReservationStatusFinalized:
		return domain.Allocation{}, domain.ErrAlreadyFinalized
	case domain.ReservationStatusExpired, domain.ReservationStatusCancelled:
		return domain.Allocation{}, domain.ErrReservationNotPending
	}
	if res.Expired(at) {
		return domain.Allocation{}, domain.ErrReservationExpired
	}

	res.Status = domain.ReservationStatusFinalized
	res.UpdatedAt = at
	c.s.reservations[reservationID] = res

	alloc := domain.Allocation{
		AllocationID:  uuid.New(),
		DealID:        res.DealID,
		InvestorID:    res.InvestorID,
		ReservationID: &res.ReservationID,
		UnitPrice:     res.ProposedUnitPrice,
		ApprovedBy:    approvedBy,
		ApprovedAt:    at,
	}
	items := make([]domain.AllocationLotItem, 0, len(c.s.resItems[reservationID]))
	for _, item := range c.s.resItems[reservationID] {
		alloc.Units += item.UnitsDrawn
		items = append(items, domain.AllocationLotItem{
			AllocationID: alloc.AllocationID,
			LotID:        item.LotID,
			UnitsDrawn:   item.UnitsDrawn,
		})
	}
	c.s.allocations[alloc.AllocationID] = alloc
	c.s.allocItems[alloc.AllocationID] = items
	return alloc, nil
}

func (c contractAllocations) GetByID(_ context.Context, allocationID uuid.UUID) (domain.Allocation, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	alloc, ok := c.s.allocations[allocationID]
	if !ok {
		return domain.Allocation{}, domain.ErrNotFound
	}
	return alloc, nil
}

func (c contractAllocations) ListByDeal(_ context.Context, dealID uuid.UUID) ([]domain.Allocation, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	allocs := make([]domain.Allocation, 0)
	for _, alloc := range c.s.allocations {
		if alloc.DealID == dealID {
			allocs = append(allocs, alloc)
		}
	}
	return allocs, nil
}

func (c contractAllocations) ListItems(_ context.Context, allocationID uuid.UUID) ([]domain.AllocationLotItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return append([]domain.AllocationLotItem(nil), c.s.allocItems[allocationID]...), nil
}

type contractSummaries struct{ s *contractStore }

func (c contractSummaries) Summarize(_ context.Context, dealID uuid.UUID, now time.Time) (domain.InventorySummary, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	summary := domain.InventorySummary{DealID: dealID, CalculatedAt: now}
	for _, lot := range c.s.lots {
		if lot.DealID == dealID {
			summary.TotalUnits += lot.UnitsTotal
		}
	}
	for _, res := range c.s.reservations {
		if res.DealID == dealID && res.Status == domain.ReservationStatusPending {
			summary.ReservedUnits += res.RequestedUnits
		}
	}
	for _, alloc := range c.s.allocations {
		if alloc.DealID == dealID {
			summary.AllocatedUnits += alloc.Units
		}
	}
	summary.AvailableUnits = summary.TotalUnits - summary.ReservedUnits - summary.AllocatedUnits
	return summary, nil
}

type contractIdempotency struct {
	mu      sync.Mutex
	records map[string]ports.IdempotencyRecord
}

func (c *contractIdempotency) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[key]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (c *contractIdempotency) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[key]; ok {
		return domain.ErrConflict
	}
	c.records[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ExpiresAt: expiresAt}
	return nil
}

func (c *contractIdempotency) Complete(_ context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := c.records[key]
	rec.ResponseCode = responseCode
	rec.ResponseBody = responseBody
	c.records[key] = rec
	return nil
}

type noopOutbox struct{}

func (noopOutbox) Enqueue(context.Context, ports.OutboxRecord) error { return nil }
func (noopOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (noopOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (noopOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}
func (noopOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, string, string, map[string]string) error { return nil }

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string) error { return nil }
