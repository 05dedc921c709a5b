package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/desi-etsy/internal/config"
	"github.com/desi-etsy/internal/mail"
	"github.com/desi-etsy/internal/models"
	"github.com/desi-etsy/internal/otp"
	"github.com/desi-etsy/internal/provider"
	"github.com/desi-etsy/internal/repository"
	"github.com/desi-etsy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	fail map[string]bool
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type routerFixture struct {
	engine   *gin.Engine
	mailer   *captureMailer
	products *service.ProductService
}

func newRouterFixture(t *testing.T, maxRequests int) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug", BasePath: "/api"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		Security: config.SecurityConfig{
			OTPRateLimit: config.RateLimitConfig{WindowSeconds: 60, MaxRequests: maxRequests},
		},
	}
	mailer := &captureMailer{fail: map[string]bool{}}
	store := otp.NewMemoryStore()
	codes := []string{"123456", "654321", "111111", "222222"}
	var idx int
	var codeMu sync.Mutex
	otpService := otp.NewService(store, mailer, otp.NoopPurger{}, otp.Options{
		TTL:  5 * time.Minute,
		From: "shop@example.com",
		Codes: func() (string, error) {
			codeMu.Lock()
			defer codeMu.Unlock()
			code := codes[idx%len(codes)]
			idx++
			return code, nil
		},
	})
	productRepo := repository.NewProductRepository(db)
	products := service.NewProductService(productRepo, 0)

	container := &provider.Container{
		Config:         cfg,
		Mailer:         mailer,
		ProductRepo:    productRepo,
		OTPStore:       store,
		OTPService:     otpService,
		ProductService: products,
	}
	return &routerFixture{engine: SetupRouter(cfg, container), mailer: mailer, products: products}
}

func (f *routerFixture) postJSON(path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *routerFixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v, raw=%s", err, w.Body.String())
	}
	return body
}

func TestOTPRoutesIssueAndVerify(t *testing.T) {
	f := newRouterFixture(t, 10)

	w := f.postJSON("/api/send-email-otp", `{"email":"a@x.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("send status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["message"]; got != "OTP sent successfully" {
		t.Fatalf("send message want OTP sent successfully got %v", got)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("response should carry request id")
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].To != "a@x.com" {
		t.Fatalf("one mail to a@x.com expected, got %+v", f.mailer.sent)
	}

	w = f.postJSON("/api/verify-email-otp", `{"email":"a@x.com","otp":"123456"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("verify status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["verified"]; got != true {
		t.Fatalf("verified want true got %v", got)
	}

	w = f.postJSON("/api/verify-email-otp", `{"email":"a@x.com","otp":"123456"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second verify status want 400 got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["verified"] != false || body["message"] != "Invalid or expired OTP" {
		t.Fatalf("unexpected second verify body %v", body)
	}
}

func TestOTPRoutesErrors(t *testing.T) {
	f := newRouterFixture(t, 10)
	f.mailer.fail["b@x.com"] = true

	tests := []struct {
		name    string
		path    string
		body    string
		code    int
		message string
	}{
		{name: "missing_email", path: "/api/send-email-otp", body: `{}`, code: http.StatusBadRequest, message: "Email is required"},
		{name: "malformed_body", path: "/api/send-email-otp", body: `{"email":`, code: http.StatusBadRequest, message: "Email is required"},
		{name: "blank_email", path: "/api/send-email-otp", body: `{"email":"   "}`, code: http.StatusBadRequest, message: "Email is required"},
		{name: "dispatch_failed", path: "/api/send-email-otp", body: `{"email":"b@x.com"}`, code: http.StatusInternalServerError, message: "Failed to send OTP"},
		{name: "verify_after_failed_dispatch", path: "/api/verify-email-otp", body: `{"email":"b@x.com","otp":"123456"}`, code: http.StatusBadRequest, message: "Invalid or expired OTP"},
		{name: "verify_malformed", path: "/api/verify-email-otp", body: `not-json`, code: http.StatusBadRequest, message: "Invalid or expired OTP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.postJSON(tt.path, tt.body)
			if w.Code != tt.code {
				t.Fatalf("status want %d got %d body=%s", tt.code, w.Code, w.Body.String())
			}
			if got := decodeBody(t, w)["message"]; got != tt.message {
				t.Fatalf("message want %q got %v", tt.message, got)
			}
		})
	}
}

func TestOTPSendRateLimited(t *testing.T) {
	f := newRouterFixture(t, 2)

	for i := 0; i < 2; i++ {
		if w := f.postJSON("/api/send-email-otp", `{"email":"c@x.com"}`); w.Code != http.StatusOK {
			t.Fatalf("request %d status want 200 got %d", i+1, w.Code)
		}
	}
	w := f.postJSON("/api/send-email-otp", `{"email":"c@x.com"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status want 429 got %d", w.Code)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("limited request should not send mail, sent=%d", len(f.mailer.sent))
	}
}

func TestCatalogRoutes(t *testing.T) {
	f := newRouterFixture(t, 10)
	ctx := context.Background()

	saree, err := f.products.Create(ctx, service.CreateProductInput{
		Title:    "Banarasi Silk Saree",
		Category: "Sarees",
		Price:    decimal.RequireFromString("2499.00"),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := f.products.Create(ctx, service.CreateProductInput{
		Title:    "Brass Diya",
		Category: "Decor",
		Price:    decimal.RequireFromString("349.50"),
	}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	w := f.get("/api/products?search=SILK")
	if w.Code != http.StatusOK {
		t.Fatalf("list status want 200 got %d", w.Code)
	}
	var list []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("list body should be an array: %v", err)
	}
	if len(list) != 1 || list[0]["_id"] != saree.ID || list[0]["price"] != 2499.0 {
		t.Fatalf("unexpected list %v", list)
	}
	if w.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("total header want 1 got %s", w.Header().Get("X-Total-Count"))
	}

	w = f.get("/api/products?category=Decor&page=1&page_size=10")
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0]["title"] != "Brass Diya" {
		t.Fatalf("category filter unexpected %s", w.Body.String())
	}
	if w.Header().Get("X-Page-Size") != "10" {
		t.Fatalf("page size header want 10 got %s", w.Header().Get("X-Page-Size"))
	}

	w = f.get("/api/products?category=%20Decor")
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 0 {
		t.Fatalf("padded category should match nothing, got %s", w.Body.String())
	}

	w = f.get("/api/products/" + saree.ID)
	if w.Code != http.StatusOK || decodeBody(t, w)["title"] != "Banarasi Silk Saree" {
		t.Fatalf("detail unexpected status=%d body=%s", w.Code, w.Body.String())
	}

	w = f.get("/api/products/" + uuid.NewString())
	if w.Code != http.StatusNotFound || decodeBody(t, w)["message"] != "Product not found" {
		t.Fatalf("missing product unexpected status=%d body=%s", w.Code, w.Body.String())
	}

	w = f.get("/api/categories")
	var categories []string
	if err := json.Unmarshal(w.Body.Bytes(), &categories); err != nil {
		t.Fatalf("categories body should be an array: %v", err)
	}
	if len(categories) != 2 || categories[0] != "Decor" || categories[1] != "Sarees" {
		t.Fatalf("categories want [Decor Sarees] got %v", categories)
	}
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t, 10)
	w := f.get("/healthz")
	if w.Code != http.StatusOK || decodeBody(t, w)["status"] != "ok" {
		t.Fatalf("healthz unexpected status=%d body=%s", w.Code, w.Body.String())
	}
}
