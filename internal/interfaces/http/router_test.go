package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/billing"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/tax"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
)

type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newAPI(t *testing.T, healthErr error) (*apiClient, *metrics.Metrics) {
	t.Helper()
	store := memory.New()
	m := metrics.New(false)
	c := inventory.Collaborators{Metrics: m}
	taxCalc, err := tax.NewFlatRateCalculator(decimal.RequireFromString("0.19"), nil)
	require.NoError(t, err)

	app := apphttp.NewApp(apphttp.RouterDeps{
		WarehouseUC:  usecase.NewWarehouseUseCase(store),
		ItemUC:       usecase.NewItemUseCase(store),
		OrderUC:      usecase.NewOrderUseCase(store),
		Reservations: inventory.NewReservationUseCase(store, c),
		Documents: apphttp.DocumentEngines{
			Drafts:      inventory.NewDraftUseCase(store, c),
			Shipments:   inventory.NewShipmentPostingUseCase(store, taxCalc, c),
			Receipts:    inventory.NewReceiptPostingUseCase(store, c),
			Transfers:   inventory.NewTransferPostingUseCase(store, c),
			Adjustments: inventory.NewAdjustmentPostingUseCase(store, c),
		},
		Availability:  inventory.NewAvailabilityUseCase(store, c),
		Replenishment: inventory.NewReplenishmentUseCase(store, c),
		Sequencer:     inventory.NewSequencerUseCase(store, c),
		Invoices:      billing.NewInvoiceUseCase(store, pdf.NewMarotoPDFGenerator("Ferretería Demo")),
		Metrics:       m,
		HealthCheck:   func() error { return healthErr },
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testIssuer,
		AppName:       "ledger-test",
	}, 5*time.Second, 5*time.Second)

	return &apiClient{t: t, app: app, token: bearer(t, testCompanyID, "admin")}, m
}

func (a *apiClient) do(method, path string, body any, out any) int {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", a.token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(a.t, err)
		require.NoErrorf(a.t, json.Unmarshal(raw, out), "cuerpo: %s", raw)
	}
	return resp.StatusCode
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedCatalog crea bodega + ítem y recibe 10 unidades a costo 5 vía orden de compra.
func (a *apiClient) seedCatalog() (whID, itemID string) {
	var wh dto.WarehouseResponse
	require.Equal(a.t, http.StatusCreated, a.do("POST", "/api/warehouses", dto.CreateWarehouseRequest{Code: "W1", Name: "Principal"}, &wh))
	var it dto.ItemResponse
	cost := d("5")
	require.Equal(a.t, http.StatusCreated, a.do("POST", "/api/items", dto.CreateItemRequest{
		Code: "A", Name: "Tornillo", Cost: &cost, Price: d("20"), ReorderPoint: d("3"),
	}, &it))

	var po dto.PurchaseOrderResponse
	require.Equal(a.t, http.StatusCreated, a.do("POST", "/api/purchase-orders", dto.CreatePurchaseOrderRequest{
		SupplierID: "prov-1", WarehouseID: wh.ID,
		Lines: []dto.PurchaseOrderLineRequest{{ItemID: it.ID, QtyOrdered: d("10"), UnitCost: d("5")}},
	}, &po))
	require.Equal(a.t, http.StatusOK, a.do("POST", "/api/purchase-orders/"+po.ID+"/confirm", nil, nil))

	var rc dto.DocumentResponse
	require.Equal(a.t, http.StatusCreated, a.do("POST", "/api/receipts", dto.CreateReceiptRequest{
		PurchaseOrderID: po.ID,
		Lines:           []dto.DraftLineRequest{{POLineID: po.Lines[0].ID, Quantity: d("10")}},
	}, &rc))
	var posted dto.PostingResponse
	require.Equal(a.t, http.StatusOK, a.do("POST", "/api/receipts/"+rc.ID+"/post", nil, &posted))
	require.Equal(a.t, "RCV-000001", posted.Number)
	require.Equal(a.t, "fully_received", posted.OrderStatus)
	return wh.ID, it.ID
}

func TestAPI_FlujoDeVenta(t *testing.T) {
	api, m := newAPI(t, nil)
	whID, itemID := api.seedCatalog()

	var so dto.SalesOrderResponse
	require.Equal(t, http.StatusCreated, api.do("POST", "/api/sales-orders", dto.CreateSalesOrderRequest{
		CustomerID: "cli-1", WarehouseID: whID,
		Lines: []dto.SalesOrderLineRequest{{ItemID: itemID, QtyOrdered: d("4"), UnitPrice: d("20")}},
	}, &so))
	lineID := so.Lines[0].ID

	var reserved []dto.ReservationResponse
	require.Equal(t, http.StatusCreated, api.do("POST", "/api/orders/"+so.ID+"/reservations", dto.ReserveStockRequest{
		Lines: []dto.ReserveLineRequest{{OrderLineID: lineID, ItemID: itemID, Quantity: d("4")}},
	}, &reserved))
	require.Len(t, reserved, 1)
	assert.Equal(t, "active", reserved[0].Status)

	var avail dto.AvailabilityResponse
	require.Equal(t, http.StatusOK, api.do("GET", "/api/availability/"+itemID+"?warehouse_id="+whID, nil, &avail))
	assert.True(t, avail.Available.Equal(d("6")), "available %s", avail.Available)

	var shp dto.DocumentResponse
	require.Equal(t, http.StatusCreated, api.do("POST", "/api/shipments", dto.CreateShipmentRequest{
		OrderID: so.ID,
		Lines:   []dto.DraftLineRequest{{OrderLineID: lineID, Quantity: d("4")}},
	}, &shp))
	assert.Equal(t, "draft", shp.Status)

	var posting dto.PostingResponse
	require.Equal(t, http.StatusOK, api.do("POST", "/api/shipments/"+shp.ID+"/post", nil, &posting))
	assert.Equal(t, "SHP-000001", posting.Number)
	assert.Equal(t, "fully_shipped", posting.OrderStatus)
	require.NotNil(t, posting.Invoice)
	assert.True(t, posting.Invoice.GrandTotal.Equal(d("95.2")), "grand %s", posting.Invoice.GrandTotal)
	require.Len(t, posting.Entries, 1)
	assert.True(t, posting.Entries[0].Quantity.Equal(d("-4")))

	var invoice dto.InvoiceResponse
	require.Equal(t, http.StatusOK, api.do("GET", "/api/invoices/"+posting.Invoice.ID, nil, &invoice))
	assert.Equal(t, "SHP-000001", invoice.ShipmentNumber)
	require.Len(t, invoice.Lines, 1)
	assert.Equal(t, "Tornillo", invoice.Lines[0].ItemName)

	req := httptest.NewRequest("GET", "/api/invoices/"+posting.Invoice.ID+"/pdf", nil)
	req.Header.Set("Authorization", api.token)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	var again dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, api.do("POST", "/api/shipments/"+shp.ID+"/post", nil, &again))
	assert.Equal(t, "ALREADY_POSTED", again.Code)

	var agg dto.AvailabilityResponse
	require.Equal(t, http.StatusOK, api.do("GET", "/api/availability/"+itemID, nil, &agg))
	assert.True(t, agg.OnHand.Equal(d("6")))
	assert.True(t, agg.Committed.IsZero())
	assert.Len(t, agg.ByWarehouse, 1)

	var ledger dto.LedgerListResponse
	require.Equal(t, http.StatusOK, api.do("GET", "/api/ledger?item_id="+itemID, nil, &ledger))
	assert.Len(t, ledger.Items, 2)

	var seq dto.SequenceResponse
	require.Equal(t, http.StatusCreated, api.do("POST", "/api/sequences/qt/next", nil, &seq))
	assert.Equal(t, "QT-000001", seq.Number)
	assert.Equal(t, "QT", seq.DocType)

	assert.Equal(t, 1.0, testutilCount(t, m, "post_shipment"))
}

func TestAPI_StockInsuficienteDevuelveDetalle(t *testing.T) {
	api, _ := newAPI(t, nil)
	whID, itemID := api.seedCatalog()

	var so dto.SalesOrderResponse
	require.Equal(t, http.StatusCreated, api.do("POST", "/api/sales-orders", dto.CreateSalesOrderRequest{
		CustomerID: "cli-1", WarehouseID: whID,
		Lines: []dto.SalesOrderLineRequest{{ItemID: itemID, QtyOrdered: d("50"), UnitPrice: d("20")}},
	}, &so))

	var body dto.ErrorResponse
	status := api.do("POST", "/api/orders/"+so.ID+"/reservations", dto.ReserveStockRequest{
		Lines: []dto.ReserveLineRequest{{OrderLineID: so.Lines[0].ID, ItemID: itemID, Quantity: d("50")}},
	}, &body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, itemID, body.Details["item_id"])
	assert.Equal(t, "50", body.Details["requested"])
	assert.Equal(t, "10", body.Details["available"])
}

func TestAPI_Validaciones(t *testing.T) {
	api, _ := newAPI(t, nil)
	whID, itemID := api.seedCatalog()

	var body dto.ErrorResponse
	status := api.do("POST", "/api/transfers", dto.CreateTransferRequest{
		SourceWarehouseID: whID, DestWarehouseID: whID,
		Lines: []dto.DraftLineRequest{{ItemID: itemID, Quantity: d("1")}},
	}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Details, "CreateTransferRequest.DestWarehouseID")

	body = dto.ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, api.do("POST", "/api/shipments", dto.CreateShipmentRequest{}, &body))
	assert.Equal(t, "VALIDATION", body.Code)

	body = dto.ErrorResponse{}
	assert.Equal(t, http.StatusNotFound, api.do("POST", "/api/shipments/no-existe/post", nil, &body))
	assert.Equal(t, "NOT_FOUND", body.Code)

	assert.Equal(t, http.StatusNotFound, api.do("GET", "/api/items/no-existe", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/api/invoices/no-existe", nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do("GET", "/api/ledger?from=ayer", nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do("POST", "/api/sequences/x1/next", nil, nil))

	api.token = bearer(t, "otra-empresa", "admin")
	assert.Equal(t, http.StatusNotFound, api.do("GET", "/api/availability/"+itemID, nil, nil), "otra empresa no ve el ítem")

	api.token = ""
	assert.Equal(t, http.StatusUnauthorized, api.do("GET", "/api/ledger", nil, nil))
}

func TestAPI_HealthYMetricas(t *testing.T) {
	api, _ := newAPI(t, nil)
	api.token = ""
	var health map[string]string
	require.Equal(t, http.StatusOK, api.do("GET", "/health", nil, &health))
	assert.Equal(t, "ok", health["status"])

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `inventario_ledger_http_requests_total{method="GET",route="/health",status="200"} 1`)

	degraded, _ := newAPI(t, errors.New("bd caída"))
	degraded.token = ""
	assert.Equal(t, http.StatusServiceUnavailable, degraded.do("GET", "/health", nil, nil))
}
