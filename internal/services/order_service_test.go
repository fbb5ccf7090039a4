// internal/services/order_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/riteshop/riteshop-backend/internal/models"
)

type stubPayPal struct {
	captured []string
	fail     error
}

func (s *stubPayPal) CreateTransaction(ctx context.Context, total float64) (*PayPalOrder, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return &PayPalOrder{ID: "PAYPAL-ORDER", Status: "CREATED"}, nil
}

func (s *stubPayPal) CapturePayment(ctx context.Context, paypalOrderID string) (*PayPalOrder, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.captured = append(s.captured, paypalOrderID)
	return &PayPalOrder{ID: paypalOrderID, Status: "COMPLETED"}, nil
}

type stubCards struct {
	succeeded bool
}

func (s *stubCards) CreateIntent(total float64, metadata map[string]string) (*PaymentIntentResponse, error) {
	return &PaymentIntentResponse{ClientSecret: "cs_test", PaymentID: "pi_test", Status: "requires_payment_method"}, nil
}

func (s *stubCards) IntentSucceeded(paymentIntentID string) (bool, error) {
	return s.succeeded, nil
}

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	carts   *CartService
	service *OrderService
	paypal  *stubPayPal
	cards   *stubCards
	user    *models.User
	admin   *models.User
	shirt   *models.Product
	mug     *models.Product
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.carts = NewCartService(s.db)
	s.paypal = &stubPayPal{}
	s.cards = &stubCards{succeeded: true}
	s.service = NewOrderService(s.db, s.carts, s.paypal, s.cards)
	s.user = createUser(s.T(), s.db, "buyer@example.com", models.RoleCustomer)
	s.admin = createUser(s.T(), s.db, "admin@example.com", models.RoleAdmin)
	s.shirt = createProduct(s.T(), s.db, "Shirt", 10, 100)
	s.mug = createProduct(s.T(), s.db, "Mug", 5, 40)
}

func (s *OrderServiceTestSuite) actor(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (s *OrderServiceTestSuite) fillCart() {
	_, err := s.carts.AddItem(s.user.ID, &AddItemRequest{ProductID: s.shirt.ID.String(), Quantity: 20})
	s.Require().NoError(err)
	_, err = s.carts.AddItem(s.user.ID, &AddItemRequest{ProductID: s.mug.ID.String(), Quantity: 30})
	s.Require().NoError(err)
}

func (s *OrderServiceTestSuite) createOrder(fee float64) *models.Order {
	order, err := s.service.Create(s.user.ID, &CreateOrderRequest{
		ShippingAddress: models.ShippingAddress{
			Address:    "1 Main St",
			City:       "Lagos",
			PostalCode: "100001",
			Tel:        "08000000000",
			Country:    "NG",
		},
		ShippingFee: fee,
	})
	s.Require().NoError(err)
	return order
}

func (s *OrderServiceTestSuite) TestCreateOrderSnapshotsCartAndDrainsIt() {
	s.fillCart()
	_, err := s.carts.UpdateItem(s.user.ID, &UpdateItemRequest{ProductID: s.shirt.ID.String(), Quantity: 15})
	s.Require().NoError(err)

	order := s.createOrder(15)

	s.Equal(300.0, order.ItemsPrice)
	s.Equal(315.0, order.Total)
	s.Len(order.Items, 2)
	s.False(order.IsPaid)
	s.False(order.IsDelivered)

	cart, err := s.carts.GetCart(s.user.ID)
	s.Require().NoError(err)
	s.Empty(cart.Items)
	s.Equal(0.0, cart.Bill)
}

func (s *OrderServiceTestSuite) TestCreateOrderEmptyCart() {
	s.fillCart()
	s.Require().NoError(s.carts.EmptyCart(s.user.ID))

	_, err := s.service.Create(s.user.ID, &CreateOrderRequest{})
	s.ErrorIs(err, ErrCartEmpty)

	var count int64
	s.db.Model(&models.Order{}).Count(&count)
	s.Zero(count)
}

func (s *OrderServiceTestSuite) TestCreateOrderMissingCart() {
	_, err := s.service.Create(s.user.ID, &CreateOrderRequest{})
	s.ErrorIs(err, ErrCartNotFound)
}

func (s *OrderServiceTestSuite) TestGetByIDOwnerAndAdmin() {
	s.fillCart()
	order := s.createOrder(0)

	_, err := s.service.GetByID(order.ID, s.actor(s.user))
	s.NoError(err)

	_, err = s.service.GetByID(order.ID, s.actor(s.admin))
	s.NoError(err)

	stranger := createUser(s.T(), s.db, "other@example.com", models.RoleCustomer)
	_, err = s.service.GetByID(order.ID, s.actor(stranger))
	s.ErrorIs(err, ErrNotAllowed)
}

func (s *OrderServiceTestSuite) TestGetByIDUnknownOrder() {
	_, err := s.service.GetByID(uuid.New(), s.actor(s.admin))
	s.ErrorIs(err, ErrOrderNotFound)
}

func (s *OrderServiceTestSuite) TestGetAllCountsOrders() {
	s.fillCart()
	s.createOrder(0)

	orders, count, err := s.service.GetAll(testPagination())
	s.Require().NoError(err)
	s.Equal(int64(1), count)
	s.Len(orders, 1)
}

func (s *OrderServiceTestSuite) TestUpdateMarksDelivery() {
	s.fillCart()
	order := s.createOrder(0)

	delivered := true
	updated, err := s.service.Update(order.ID, &UpdateOrderRequest{IsDelivered: &delivered}, s.actor(s.admin))
	s.Require().NoError(err)
	s.True(updated.IsDelivered)
	s.NotNil(updated.DeliveredAt)
}

func (s *OrderServiceTestSuite) TestUpdateDeliveredOrderRejected() {
	s.fillCart()
	order := s.createOrder(0)

	delivered := true
	_, err := s.service.Update(order.ID, &UpdateOrderRequest{IsDelivered: &delivered}, s.actor(s.admin))
	s.Require().NoError(err)

	fee := 99.0
	_, err = s.service.Update(order.ID, &UpdateOrderRequest{ShippingFee: &fee}, s.actor(s.admin))
	s.ErrorIs(err, ErrOrderNotFound)
}

func (s *OrderServiceTestSuite) TestCapturePaymentDecrementsStock() {
	s.fillCart()
	order := s.createOrder(0)

	capture, err := s.service.CapturePayment(context.Background(), "PAYPAL-ORDER", order.ID)
	s.Require().NoError(err)
	s.Equal("COMPLETED", capture.Status)
	s.Equal([]string{"PAYPAL-ORDER"}, s.paypal.captured)

	paid, err := s.service.GetByID(order.ID, s.actor(s.admin))
	s.Require().NoError(err)
	s.True(paid.IsPaid)
	s.Equal(models.PaymentMethodPayPal, paid.PaymentMethod)

	var shirt, mug models.Product
	s.Require().NoError(s.db.First(&shirt, "id = ?", s.shirt.ID).Error)
	s.Require().NoError(s.db.First(&mug, "id = ?", s.mug.ID).Error)
	s.Equal(80, shirt.Quantity)
	s.Equal(10, mug.Quantity)
}

func (s *OrderServiceTestSuite) TestCaptureFloorsStockAtZero() {
	// Order 30 mugs, then shrink the stock below the ordered quantity before
	// capture. The decrement must bottom out at zero.
	s.fillCart()
	order := s.createOrder(0)
	s.Require().NoError(s.db.Model(&models.Product{}).Where("id = ?", s.mug.ID).Update("quantity", 12).Error)

	_, err := s.service.CapturePayment(context.Background(), "PAYPAL-ORDER", order.ID)
	s.Require().NoError(err)

	var mug models.Product
	s.Require().NoError(s.db.First(&mug, "id = ?", s.mug.ID).Error)
	s.Equal(0, mug.Quantity)
}

func (s *OrderServiceTestSuite) TestConfirmCardPayment() {
	s.fillCart()
	order := s.createOrder(0)

	s.Require().NoError(s.service.ConfirmCardPayment("pi_test", order.ID))

	paid, err := s.service.GetByID(order.ID, s.actor(s.admin))
	s.Require().NoError(err)
	s.True(paid.IsPaid)
	s.Equal(models.PaymentMethodCard, paid.PaymentMethod)
}

func (s *OrderServiceTestSuite) TestConfirmCardPaymentRequiresSuccess() {
	s.fillCart()
	order := s.createOrder(0)
	s.cards.succeeded = false

	err := s.service.ConfirmCardPayment("pi_test", order.ID)
	s.Error(err)

	unpaid, err := s.service.GetByID(order.ID, s.actor(s.admin))
	s.Require().NoError(err)
	s.False(unpaid.IsPaid)
}

func (s *OrderServiceTestSuite) TestCreateCardIntent() {
	s.fillCart()
	order := s.createOrder(0)

	intent, err := s.service.CreateCardIntent(order.ID, s.actor(s.user))
	s.Require().NoError(err)
	s.Equal("cs_test", intent.ClientSecret)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
