package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/guardpost/console/internal/api/v1"
	"github.com/guardpost/console/internal/domain/customer"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/service"
	"github.com/guardpost/console/internal/testutil"
	"github.com/guardpost/console/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.router = s.newRouter(types.ModeLocal)

	ctx := s.GetContext()
	s.NoError(s.GetStores().CustomerRepo.AddClient(ctx, &customer.Client{ID: "cli_acme", Name: "Acme Security"}))
	s.NoError(s.GetStores().CustomerRepo.AddPostSite(ctx, &customer.PostSite{ID: "site_gate", ClientID: "cli_acme", Name: "North Gate"}))
}

func (s *RouterSuite) newRouter(mode types.RunMode) *gin.Engine {
	cfg := *s.GetConfig()
	cfg.Deployment.Mode = mode

	stores := s.GetStores()
	params := service.ServiceParams{
		Logger:           s.GetLogger(),
		Config:           &cfg,
		Cache:            s.GetCache(),
		PDFRenderer:      s.GetPDFRenderer(),
		SentryService:    s.GetSentry(),
		WebhookPublisher: s.GetWebhookPublisher(),
		DocumentStore:    stores.Documents,
		InvoiceRepo:      stores.InvoiceRepo,
		PaymentRepo:      stores.PaymentRepo,
		CatalogRepo:      stores.CatalogRepo,
		CustomerRepo:     stores.CustomerRepo,
		Clock:            s.GetNow,
	}
	catalogService := service.NewCatalogService(params)

	return NewRouter(Handlers{
		Health:  v1.NewHealthHandler(s.GetLogger()),
		Invoice: v1.NewInvoiceHandler(service.NewInvoiceService(params, catalogService), s.GetLogger()),
		Payment: v1.NewPaymentHandler(service.NewPaymentService(params), s.GetLogger()),
		Catalog: v1.NewCatalogHandler(catalogService, s.GetLogger()),
	}, &cfg, s.GetLogger(), s.GetSentry())
}

func (s *RouterSuite) do(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			s.Require().NoError(json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v))
}

func (s *RouterSuite) errorCode(w *httptest.ResponseRecorder) string {
	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.False(resp.Success)
	s.NotEmpty(resp.Error.Display)
	return resp.Error.Code
}

func (s *RouterSuite) createInvoice(clientID, postSiteID string) string {
	w := s.do(s.router, http.MethodPost, "/v1/invoices", map[string]any{
		"client_id":    clientID,
		"post_site_id": postSiteID,
		"items": []map[string]any{
			{"name": "Guard hours", "quantity": "2", "rate": "50.00", "tax_rate_percent": "10"},
		},
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID    string `json:"id"`
		Total string `json:"total"`
	}
	s.decode(w, &resp)
	s.Equal("110", resp.Total)
	return resp.ID
}

func (s *RouterSuite) TestHealth() {
	w := s.do(s.router, http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestRequestIDIsEchoed() {
	w := s.do(s.router, http.MethodGet, "/health", nil, map[string]string{types.HeaderRequestID: "req-42"})
	s.Equal("req-42", w.Header().Get(types.HeaderRequestID))

	w = s.do(s.router, http.MethodGet, "/health", nil, nil)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestInvoiceLifecycle() {
	id := s.createInvoice("cli_acme", "site_gate")
	base := "/v1/invoices/" + id

	w := s.do(s.router, http.MethodPost, base+"/preview", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(s.router, http.MethodPost, base+"/payments", map[string]any{"amount": "50.00", "method": "CASH"}, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(s.router, http.MethodPost, base+"/send", nil, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(ierr.ErrCodePaymentIncomplete, s.errorCode(w))

	w = s.do(s.router, http.MethodPost, base+"/payments", map[string]any{"amount": "60.01", "method": "CASH"}, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal(ierr.ErrCodeExceedsBalance, s.errorCode(w))

	w = s.do(s.router, http.MethodPost, base+"/payments", map[string]any{"amount": "60.00", "method": "CARD"}, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var ledger struct {
		FullyPaid     bool   `json:"fully_paid"`
		DisplayStatus string `json:"display_status"`
	}
	s.decode(w, &ledger)
	s.True(ledger.FullyPaid)
	s.Equal(string(types.InvoiceDisplayStatusPaid), ledger.DisplayStatus)

	w = s.do(s.router, http.MethodPost, base+"/send", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var sent struct {
		Status string `json:"status"`
	}
	s.decode(w, &sent)
	s.Equal(string(types.InvoiceStatusSent), sent.Status)

	w = s.do(s.router, http.MethodGet, base+"/payments", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var payments struct {
		Items []struct {
			Method string `json:"method"`
		} `json:"items"`
	}
	s.decode(w, &payments)
	s.Len(payments.Items, 2)
}

func (s *RouterSuite) TestPreviewWithoutBillingTarget() {
	id := s.createInvoice("", "")

	w := s.do(s.router, http.MethodPost, "/v1/invoices/"+id+"/preview", nil, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(ierr.ErrCodeMissingBillingTarget, s.errorCode(w))
}

func (s *RouterSuite) TestInvalidAmount() {
	id := s.createInvoice("cli_acme", "site_gate")

	w := s.do(s.router, http.MethodPost, "/v1/invoices/"+id+"/payments", map[string]any{"amount": "0", "method": "CASH"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeInvalidAmount, s.errorCode(w))
}

func (s *RouterSuite) TestCalculate() {
	w := s.do(s.router, http.MethodPost, "/v1/invoices/calculate", map[string]any{
		"items": []map[string]any{
			{"name": "Hours", "quantity": "1", "rate": "19.995", "tax_rate_percent": "0"},
			{"name": "Fee", "quantity": "1", "rate": "0.01", "tax_rate_percent": "0"},
		},
	}, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Total string `json:"total"`
	}
	s.decode(w, &resp)
	s.Equal("20.01", resp.Total)
}

func (s *RouterSuite) TestMalformedBody() {
	w := s.do(s.router, http.MethodPost, "/v1/invoices", "{not json", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeValidation, s.errorCode(w))
}

func (s *RouterSuite) TestNotFound() {
	w := s.do(s.router, http.MethodGet, "/v1/invoices/inv_missing", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(ierr.ErrCodeNotFound, s.errorCode(w))

	w = s.do(s.router, http.MethodGet, "/v1/unknown", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(ierr.ErrCodeNotFound, s.errorCode(w))
}

func (s *RouterSuite) TestTenantHeaderRequiredOutsideLocalMode() {
	router := s.newRouter(types.ModeAPI)
	defer gin.SetMode(gin.TestMode)

	w := s.do(router, http.MethodGet, "/v1/catalog", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeValidation, s.errorCode(w))

	w = s.do(router, http.MethodGet, "/v1/catalog", nil, map[string]string{types.HeaderTenantID: types.DefaultTenantID})
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *RouterSuite) TestDocumentURL() {
	id := s.createInvoice("cli_acme", "site_gate")
	base := "/v1/invoices/" + id

	w := s.do(s.router, http.MethodGet, base+"/document/url", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeInvalidOperation, s.errorCode(w))

	s.Require().Equal(http.StatusOK, s.do(s.router, http.MethodPost, base+"/preview", nil, nil).Code)
	s.Require().Equal(http.StatusCreated, s.do(s.router, http.MethodPost, base+"/payments", map[string]any{"amount": "110.00", "method": "CASH"}, nil).Code)
	s.Require().Equal(http.StatusOK, s.do(s.router, http.MethodPost, base+"/send", nil, nil).Code)
	s.GetStores().InvoiceRepo.SetDocument(id, types.DocumentFormatPDF, []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"))

	w = s.do(s.router, http.MethodGet, base+"/document/url", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		InvoiceID string `json:"invoice_id"`
		URL       string `json:"url"`
	}
	s.decode(w, &resp)
	s.Equal(id, resp.InvoiceID)
	s.Contains(resp.URL, id+".pdf")
}

func (s *RouterSuite) TestPaymentResubmission() {
	id := s.createInvoice("cli_acme", "site_gate")
	path := "/v1/invoices/" + id + "/payments"
	body := map[string]any{"amount": "10.00", "method": "CASH"}

	tests := []struct {
		name    string
		headers []map[string]string
		body    map[string]any
		want    int
	}{
		{
			name:    "same submission id",
			headers: []map[string]string{nil, nil},
			body:    map[string]any{"amount": "10.00", "method": "CASH", "submission_id": "form-1"},
			want:    1,
		},
		{
			name: "same request id header",
			headers: []map[string]string{
				{types.HeaderRequestID: "req-resend"},
				{types.HeaderRequestID: "req-resend"},
			},
			body: body,
			want: 1,
		},
		{
			name:    "neither is a new payment each time",
			headers: []map[string]string{nil, nil},
			body:    body,
			want:    2,
		},
	}

	recorded := 0
	for _, tt := range tests {
		s.Run(tt.name, func() {
			for _, h := range tt.headers {
				w := s.do(s.router, http.MethodPost, path, tt.body, h)
				s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
			}
			recorded += tt.want

			w := s.do(s.router, http.MethodGet, path, nil, nil)
			var payments struct {
				Items []json.RawMessage `json:"items"`
			}
			s.decode(w, &payments)
			s.Len(payments.Items, recorded)
		})
	}
}
