package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/procurement"
	"github.com/jhoicas/warehouse-ledger/internal/application/reporting"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/excel"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/warehouse-ledger/internal/interfaces/http"
	"github.com/jhoicas/warehouse-ledger/pkg/idgen"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

type server struct {
	app   *fiber.App
	store *memory.Store
}

// newServer monta el router completo sobre el store en memoria con WH1, WH2 e ItemA.
func newServer(t *testing.T) *server {
	t.Helper()
	ids := idgen.MustNew(21)
	s := memory.New(ids, time.Second)
	ctx := context.Background()
	now := time.Now()
	for _, w := range []string{"WH1", "WH2"} {
		require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: w, Code: w, Name: "Bodega " + w, CreatedAt: now, UpdatedAt: now}))
	}
	require.NoError(t, s.Items().Create(ctx, &entity.Item{ID: "ItemA", SKU: "A", Name: "Cable", UOM: "UND", CreatedAt: now, UpdatedAt: now}))

	log := logger.Nop()
	eng := inventory.NewEngine(s, s.Audit(), log)
	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:      eng,
		Queries:     inventory.NewQueryUseCase(s.StockLines(), s.Movements()),
		WarehouseUC: usecase.NewWarehouseUseCase(s.Warehouses()),
		ItemUC:      usecase.NewItemUseCase(s.Items()),
		Receipts:    procurement.NewReceiptUseCase(s, eng, s.GoodsReceipts(), ids),
		Deliveries:  procurement.NewDeliveryUseCase(s, eng, s.Deliveries(), ids),
		Reports:     reporting.NewReportUseCase(s.Reports(), s, excel.NewSnapshotExporter(), nil, log),
		Audit:       reporting.NewAuditUseCase(s.Audit()),
		JWTSecret:   testJWTSecret,
	})
	return &server{app: app, store: s}
}

func (s *server) do(t *testing.T, method, path, role string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func movement(typ, wh string, qty int64) dto.RegisterMovementRequest {
	return dto.RegisterMovementRequest{Type: typ, WarehouseID: wh, ItemID: "ItemA", Quantity: decimal.NewFromInt(qty)}
}

func TestMovements_EscenarioCompleto(t *testing.T) {
	s := newServer(t)
	sk := apphttp.RoleStorekeeper

	resp := s.do(t, http.MethodPost, "/api/inventory/movements", sk, movement("IN", "WH1", 100))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var in dto.MovementResultResponse
	decode(t, resp, &in)
	assert.Contains(t, in.MovementID, "MIN-")
	assert.True(t, in.Quantity.Equal(decimal.NewFromInt(100)))

	tr := movement("TRANSFER", "WH1", 30)
	tr.DestinationWarehouseID = "WH2"
	resp = s.do(t, http.MethodPost, "/api/inventory/movements", sk, tr)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tres dto.TransferResultResponse
	decode(t, resp, &tres)
	assert.NotEmpty(t, tres.TransferID)
	assert.True(t, tres.SourceQuantity.Equal(decimal.NewFromInt(70)))
	assert.True(t, tres.DestinationQuantity.Equal(decimal.NewFromInt(30)))

	resp = s.do(t, http.MethodPost, "/api/inventory/movements", sk, movement("OUT", "WH2", 50))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var short dto.InsufficientStockResponse
	decode(t, resp, &short)
	assert.Equal(t, "INSUFFICIENT_STOCK", short.Code)
	assert.True(t, short.Current.Equal(decimal.NewFromInt(30)))
	assert.True(t, short.Shortfall.Equal(decimal.NewFromInt(20)))

	resp = s.do(t, http.MethodGet, "/api/inventory/stock/line?warehouse_id=WH2&item_id=ItemA", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var line dto.StockLineResponse
	decode(t, resp, &line)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(30)))

	resp = s.do(t, http.MethodGet, "/api/inventory/movements?item_id=ItemA", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.MovementListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Items, 4) // IN + OUT/IN/TRANSFER; el OUT rechazado no deja registro

	resp = s.do(t, http.MethodGet, "/api/inventory/movements/"+in.MovementID, apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.MovementResponse
	decode(t, resp, &got)
	assert.Equal(t, "IN", got.Kind)
	assert.Equal(t, "MANUAL", got.Reason)
}

func TestMovements_ErroresDeEntrada(t *testing.T) {
	s := newServer(t)
	sk := apphttp.RoleStorekeeper

	resp := s.do(t, http.MethodPost, "/api/inventory/movements", sk, movement("IN", "WH1", 0))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "INVALID_QUANTITY", e.Code)

	resp = s.do(t, http.MethodPost, "/api/inventory/movements", sk, dto.RegisterMovementRequest{Type: "IN", WarehouseID: "WH1", Quantity: decimal.NewFromInt(1)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &e)
	assert.Equal(t, "VALIDATION", e.Code)

	resp = s.do(t, http.MethodPost, "/api/inventory/movements", sk, movement("IN", "WH9", 5))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/inventory/movements/MIN-0", apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/inventory/movements?kind=BAD", apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	for _, body := range []string{
		`{"type":"IN","warehouse_id":"WH1","item_id":"ItemA","quantity":"abc"}`,
		`{"type":"OUT","warehouse_id":"WH1","item_id":"ItemA","quantity":true}`,
		`{"warehouse_id":"WH1","lines":[{"item_id":"ItemA","quantity":"12,5"}]}`,
	} {
		path := "/api/inventory/movements"
		if strings.Contains(body, "lines") {
			path = "/api/grns"
		}
		resp = s.do(t, http.MethodPost, path, sk, json.RawMessage(body))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		decode(t, resp, &e)
		assert.Equal(t, "INVALID_QUANTITY", e.Code, body)
	}

	resp = s.do(t, http.MethodPost, "/api/inventory/movements", sk, json.RawMessage(`{"type":"IN","warehouse_id":7}`))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &e)
	assert.Equal(t, "INVALID_BODY", e.Code)
}

func TestRouter_Autorizacion(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleViewer, movement("IN", "WH1", 1))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/inventory/stock", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/reports/reconciliation", apphttp.RoleStorekeeper, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestReports_ConciliacionYExport(t *testing.T) {
	s := newServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleStorekeeper, movement("IN", "WH1", 12))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/reports/reconciliation", apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconciliationResponse
	decode(t, resp, &rec)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 1, rec.MovementsRead)

	resp = s.do(t, http.MethodGet, "/api/reports/stock.xlsx", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	resp.Body.Close()

	// sin generador PDF configurado
	resp = s.do(t, http.MethodGet, "/api/reports/valuation.pdf", apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/audit-logs?action="+entity.AuditActionInventoryIn, apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var audit dto.AuditListResponse
	decode(t, resp, &audit)
	require.Len(t, audit.Items, 1)
	assert.Equal(t, testEmail, audit.Items[0].Actor)
}

func TestProcurement_GRNyDespacho(t *testing.T) {
	s := newServer(t)
	sk := apphttp.RoleStorekeeper

	resp := s.do(t, http.MethodPost, "/api/grns", sk, dto.CreateGRNRequest{
		POReference: "PO-1",
		WarehouseID: "WH1",
		Lines:       []dto.GRNLineRequest{{ItemID: "ItemA", Quantity: decimal.NewFromInt(40), UnitPrice: decimal.NewFromInt(2)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var grn dto.GRNResponse
	decode(t, resp, &grn)

	resp = s.do(t, http.MethodPost, "/api/grns/"+grn.ID+"/receive", sk, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &grn)
	assert.Equal(t, entity.GRNStatusReceived, grn.Status)

	resp = s.do(t, http.MethodPost, "/api/grns/"+grn.ID+"/receive", sk, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/deliveries", sk, dto.CreateDeliveryRequest{
		WarehouseID:  "WH1",
		CustomerName: "Ferretería",
		Lines:        []dto.DeliveryLineRequest{{ItemID: "ItemA", Quantity: decimal.NewFromInt(50)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var do dto.DeliveryResponse
	decode(t, resp, &do)

	resp = s.do(t, http.MethodPost, "/api/deliveries/"+do.ID+"/ship", sk, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var short dto.InsufficientStockResponse
	decode(t, resp, &short)
	assert.True(t, short.Shortfall.Equal(decimal.NewFromInt(10)))

	resp = s.do(t, http.MethodGet, "/api/deliveries/"+do.ID, apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &do)
	assert.Equal(t, entity.DeliveryStatusCreated, do.Status)
}

func TestCatalogo_BodegasEItems(t *testing.T) {
	s := newServer(t)
	sk := apphttp.RoleStorekeeper

	resp := s.do(t, http.MethodPost, "/api/warehouses", sk, dto.CreateWarehouseRequest{Code: "WH1", Name: "Duplicada"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/warehouses/WH1/bins", sk, dto.CreateBinRequest{Code: "R-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var bin dto.BinResponse
	decode(t, resp, &bin)
	assert.Equal(t, "WH1", bin.WarehouseID)

	resp = s.do(t, http.MethodPost, "/api/items", sk, dto.CreateItemRequest{SKU: "Z-1", Name: "Tubo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/items", sk, dto.CreateItemRequest{Name: "sin sku"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/items", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items dto.ItemListResponse
	decode(t, resp, &items)
	assert.Len(t, items.Items, 2)
	assert.Equal(t, dto.DefaultPageLimit, items.Page.Limit)

	for _, q := range []string{"limit=500", "limit=-1", "offset=-3", "limit=abc"} {
		resp = s.do(t, http.MethodGet, "/api/items?"+q, apphttp.RoleViewer, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		var e dto.ErrorResponse
		decode(t, resp, &e)
		assert.Equal(t, "VALIDATION", e.Code, q)
	}

	resp = s.do(t, http.MethodGet, "/api/items?limit=1&offset=1", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &items)
	assert.Len(t, items.Items, 1)
	assert.Equal(t, 1, items.Page.Limit)
}
