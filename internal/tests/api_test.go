// internal/tests/api_test.go
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/riteshop/riteshop-backend/internal/config"
	"github.com/riteshop/riteshop-backend/internal/database"
	"github.com/riteshop/riteshop-backend/internal/models"
	"github.com/riteshop/riteshop-backend/internal/router"
	"github.com/riteshop/riteshop-backend/internal/services"
)

type fakePayPal struct{}

func (fakePayPal) CreateTransaction(ctx context.Context, total float64) (*services.PayPalOrder, error) {
	return &services.PayPalOrder{ID: "PAYPAL-ORDER", Status: "CREATED"}, nil
}

func (fakePayPal) CapturePayment(ctx context.Context, paypalOrderID string) (*services.PayPalOrder, error) {
	return &services.PayPalOrder{ID: paypalOrderID, Status: "COMPLETED"}, nil
}

type fakeCards struct{}

func (fakeCards) CreateIntent(total float64, metadata map[string]string) (*services.PaymentIntentResponse, error) {
	return &services.PaymentIntentResponse{ClientSecret: "cs_test", PaymentID: "pi_test"}, nil
}

func (fakeCards) IntentSucceeded(paymentIntentID string) (bool, error) {
	return true, nil
}

// testClientIP gives each test its own source address so the shared per-IP
// rate limiters never bleed between tests.
var testClientIP int64

type APITestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	clientIP string
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.db = db

	cfg := &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{SecretKey: "test-secret", TokenTTL: 1},
		Frontend:    config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}
	r, err := router.Initialize(db, cfg, fakePayPal{}, fakeCards{})
	s.Require().NoError(err)
	s.router = r
	s.clientIP = fmt.Sprintf("10.0.%d.%d:1234",
		atomic.AddInt64(&testClientIP, 1)/256, atomic.LoadInt64(&testClientIP)%256)
}

func (s *APITestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.RemoteAddr = s.clientIP
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *APITestSuite) registerUser(name, email string) string {
	w := s.do("POST", "/api/users/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return s.decode(w)["token"].(string)
}

// registerAdmin promotes the fresh account directly in the database and logs
// in again so the token carries the admin role.
func (s *APITestSuite) registerAdmin(email string) string {
	s.registerUser("Admin", email)
	s.Require().NoError(s.db.Model(&models.User{}).
		Where("email = ?", email).
		Update("role", models.RoleAdmin).Error)

	w := s.do("POST", "/api/users/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return s.decode(w)["token"].(string)
}

func (s *APITestSuite) createProduct(adminToken, name string, price float64, quantity int) string {
	w := s.do("POST", "/api/products", adminToken, gin.H{
		"name":        name,
		"description": "test product",
		"price":       price,
		"quantity":    quantity,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	product := s.decode(w)["product"].(map[string]interface{})
	return product["id"].(string)
}

func (s *APITestSuite) TestHealth() {
	w := s.do("GET", "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("healthy", s.decode(w)["status"])
}

func (s *APITestSuite) TestRegisterAndLogin() {
	s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/users/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "password123",
	})
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(s.decode(w)["token"])
}

func (s *APITestSuite) TestRegisterDuplicateEmail() {
	s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/users/register", "", gin.H{
		"name":     "Ada Again",
		"email":    "ada@example.com",
		"password": "password123",
	})
	s.Equal(http.StatusConflict, w.Code)

	body := s.decode(w)
	s.Equal(float64(http.StatusConflict), body["status"])
	s.Equal("User with this email already exists", body["message"])
}

func (s *APITestSuite) TestLoginWrongPassword() {
	s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/users/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid login credentials", s.decode(w)["message"])
}

func (s *APITestSuite) TestCartRequiresAuth() {
	w := s.do("GET", "/api/cart", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Unauthorised", s.decode(w)["message"])
}

func (s *APITestSuite) TestProductWriteRequiresAdmin() {
	token := s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/products", token, gin.H{
		"name":        "Shirt",
		"description": "nope",
		"price":       10,
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("You don't have enough permissions to perform this action", s.decode(w)["message"])
}

func (s *APITestSuite) TestProductNotFoundBody() {
	w := s.do("GET", "/api/products/00000000-0000-0000-0000-000000000001", "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	body := s.decode(w)
	s.Equal(float64(http.StatusNotFound), body["status"])
	s.Equal("Product not found", body["message"])
}

func (s *APITestSuite) doUpload(path, token, filename string, payload []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	s.Require().NoError(err)
	_, err = part.Write(payload)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.RemoteAddr = s.clientIP
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) TestProductImageUploadAndReplace() {
	s.T().Cleanup(func() { os.RemoveAll("uploads") })

	admin := s.registerAdmin("admin@example.com")
	productID := s.createProduct(admin, "Shirt", 10, 100)

	w := s.doUpload("/api/products/"+productID+"/image", admin, "front.png", []byte("first"))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	body := s.decode(w)
	firstKey := body["upload"].(map[string]interface{})["key"].(string)
	product := body["product"].(map[string]interface{})
	s.Contains(product["image"], "/uploads/products/")
	s.FileExists(filepath.Join("uploads", filepath.FromSlash(firstKey)))

	// Replacing the image removes the previous file from storage.
	w = s.doUpload("/api/products/"+productID+"/image", admin, "back.png", []byte("second"))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	secondKey := s.decode(w)["upload"].(map[string]interface{})["key"].(string)
	s.NotEqual(firstKey, secondKey)
	s.FileExists(filepath.Join("uploads", filepath.FromSlash(secondKey)))
	s.NoFileExists(filepath.Join("uploads", filepath.FromSlash(firstKey)))
}

func (s *APITestSuite) TestCartLifecycle() {
	admin := s.registerAdmin("admin@example.com")
	shirtID := s.createProduct(admin, "Shirt", 10, 100)
	mugID := s.createProduct(admin, "Mug", 5, 40)
	token := s.registerUser("Ada", "ada@example.com")

	// Add 20 shirts, then 30 mugs.
	w := s.do("POST", "/api/cart", token, gin.H{"item": gin.H{"product": shirtID, "quantity": 20}})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do("POST", "/api/cart", token, gin.H{"item": gin.H{"product": mugID, "quantity": 30}})
	s.Require().Equal(http.StatusCreated, w.Code)
	cart := s.decode(w)["cart"].(map[string]interface{})
	s.Equal(350.0, cart["bill"])

	// Drop the shirts to 15.
	w = s.do("PUT", "/api/cart", token, gin.H{"item": gin.H{"product": shirtID, "quantity": 15}})
	s.Require().Equal(http.StatusOK, w.Code)
	cart = s.decode(w)["cart"].(map[string]interface{})
	s.Equal(300.0, cart["bill"])

	// Remove the mugs.
	w = s.do("DELETE", "/api/cart", token, gin.H{"productId": mugID})
	s.Require().Equal(http.StatusOK, w.Code)
	cart = s.decode(w)["cart"].(map[string]interface{})
	s.Equal(150.0, cart["bill"])
	s.Len(cart["items"], 1)

	w = s.do("DELETE", "/api/cart/empty", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do("GET", "/api/cart", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	cart = s.decode(w)["cart"].(map[string]interface{})
	s.Equal(0.0, cart["bill"])
	s.Empty(cart["items"])
}

func (s *APITestSuite) TestEmptyCartWithoutCart() {
	token := s.registerUser("Ada", "ada@example.com")

	w := s.do("DELETE", "/api/cart/empty", token, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Cart not found", s.decode(w)["message"])
}

func (s *APITestSuite) TestCartInsufficientStock() {
	admin := s.registerAdmin("admin@example.com")
	mugID := s.createProduct(admin, "Mug", 5, 40)
	token := s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/cart", token, gin.H{"item": gin.H{"product": mugID, "quantity": 41}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Not enough quantity", s.decode(w)["message"])
}

func (s *APITestSuite) TestOrderLifecycle() {
	admin := s.registerAdmin("admin@example.com")
	shirtID := s.createProduct(admin, "Shirt", 10, 100)
	token := s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/cart", token, gin.H{"item": gin.H{"product": shirtID, "quantity": 30}})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do("POST", "/api/orders", token, gin.H{
		"shippingAddress": gin.H{"address": "1 Main St", "city": "Lagos", "country": "NG"},
		"shippingFee":     15,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	order := s.decode(w)["order"].(map[string]interface{})
	s.Equal(300.0, order["itemsPrice"])
	s.Equal(315.0, order["total"])
	orderID := order["id"].(string)

	// The cart drained with the order.
	w = s.do("GET", "/api/cart", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	cart := s.decode(w)["cart"].(map[string]interface{})
	s.Equal(0.0, cart["bill"])

	// Owner sees the order, a stranger does not.
	w = s.do("GET", "/api/orders/"+orderID, token, nil)
	s.Equal(http.StatusOK, w.Code)

	stranger := s.registerUser("Eve", "eve@example.com")
	w = s.do("GET", "/api/orders/"+orderID, stranger, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	// Admin listing includes the order with the count.
	w = s.do("GET", "/api/orders/all", admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(1.0, s.decode(w)["count"])

	// Capture payment, then check the stock decrement.
	w = s.do("POST", "/api/orders/capture-payment/"+orderID, token, gin.H{"paypalOrderId": "PAYPAL-ORDER"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var shirt models.Product
	s.Require().NoError(s.db.First(&shirt, "name = ?", "Shirt").Error)
	s.Equal(70, shirt.Quantity)

	// Deliver, then verify late edits bounce.
	w = s.do("PUT", "/api/orders/"+orderID, admin, gin.H{"isDelivered": true})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do("PUT", "/api/orders/"+orderID, admin, gin.H{"shippingFee": 99})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestCreateOrderWithEmptyCart() {
	token := s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/orders", token, gin.H{"shippingFee": 10})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Cart not found", s.decode(w)["message"])
}

func (s *APITestSuite) TestRoleRequestWorkflow() {
	admin := s.registerAdmin("admin@example.com")
	token := s.registerUser("Ada", "ada@example.com")

	w := s.do("POST", "/api/request-role", token, gin.H{"requestedRole": "salesagent"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	request := s.decode(w)["request"].(map[string]interface{})
	s.Equal("pending", request["status"])
	requestID := request["id"].(string)

	// A second pending request conflicts.
	w = s.do("POST", "/api/request-role", token, gin.H{"requestedRole": "admin"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("Only one request per user is allowed", s.decode(w)["message"])

	// Only admins review.
	w = s.do("PUT", "/api/request-role/"+requestID, token, gin.H{"status": "approved"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do("PUT", "/api/request-role/"+requestID, admin, gin.H{"status": "approved"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	request = s.decode(w)["request"].(map[string]interface{})
	s.Equal("approved", request["status"])

	var user models.User
	s.Require().NoError(s.db.First(&user, "email = ?", "ada@example.com").Error)
	s.Equal(models.RoleSalesAgent, user.Role)
}

func (s *APITestSuite) TestLogoutRevokesToken() {
	token := s.registerUser("Ada", "ada@example.com")

	w := s.do("GET", "/api/users", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do("POST", "/api/users/logout", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do("GET", "/api/users", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("JWT Rejected", s.decode(w)["message"])
}

func (s *APITestSuite) TestUserCanOnlyTouchOwnAccount() {
	s.registerUser("Ada", "ada@example.com")
	eve := s.registerUser("Eve", "eve@example.com")

	var ada models.User
	s.Require().NoError(s.db.First(&ada, "email = ?", "ada@example.com").Error)

	w := s.do("GET", "/api/users/"+ada.ID.String(), eve, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do("DELETE", "/api/users/"+ada.ID.String(), eve, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
