package api

import (
	"math"
	"net/mail"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	serrors "github.com/mernshop/shop-backend/pkg/errors"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

// Store keeps users, products, orders and payments in memory.
// Values returned by a store are copies. Modifying them does not change
// the stored entities.
type Store struct {
	clock clock.Clock
	newID func() string

	mutex    sync.RWMutex
	users    entities[*User]
	products entities[*Product]
	orders   entities[*Order]
	payments entities[*Payment]
}

// entities is a set of entities in insertion order.
type entities[T any] struct {
	byID map[string]T
	ids  []string
}

func (e *entities[T]) get(id string) (T, bool) {
	entity, found := e.byID[id]
	return entity, found
}

func (e *entities[T]) put(id string, entity T) {
	if e.byID == nil {
		e.byID = map[string]T{}
	}
	if _, found := e.byID[id]; !found {
		e.ids = append(e.ids, id)
	}
	e.byID[id] = entity
}

func (e *entities[T]) delete(id string) bool {
	if _, found := e.byID[id]; !found {
		return false
	}
	delete(e.byID, id)
	for i, existing := range e.ids {
		if existing == id {
			e.ids = append(e.ids[:i], e.ids[i+1:]...)
			break
		}
	}
	return true
}

func (e *entities[T]) list(filter func(T) bool) []T {
	result := make([]T, 0, len(e.ids))
	for _, id := range e.ids {
		entity := e.byID[id]
		if filter == nil || filter(entity) {
			result = append(result, copyOf(entity))
		}
	}
	return result
}

func copyOf[T any](entity T) T {
	return deepcopy.Copy(entity).(T)
}

// NewStore returns an empty store.
func NewStore(clk clock.Clock) *Store {
	return &Store{
		clock: clk,
		newID: uuid.NewString,
	}
}

// CreateUser stores a new user. Name and a valid email address are
// required and the email address must not be used by another user.
func (s *Store) CreateUser(user User) (*User, error) {
	user.Name = strings.TrimSpace(user.Name)
	if user.Name == "" {
		return nil, serrors.BadRequest(errors.New("user name is required"))
	}
	address, err := mail.ParseAddress(user.Email)
	if err != nil {
		return nil, serrors.BadRequest(errors.Errorf("invalid email address %q", user.Email))
	}
	user.Email = strings.ToLower(address.Address)
	if user.Role == "" {
		user.Role = "user"
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, id := range s.users.ids {
		if existing, _ := s.users.get(id); existing.Email == user.Email {
			return nil, serrors.BadRequest(errors.Errorf("email address %q is already registered", user.Email))
		}
	}
	user.ID = s.newID()
	user.CreatedAt = s.clock.Now()
	s.users.put(user.ID, copyOf(&user))
	return &user, nil
}

// User returns the user with the given ID.
func (s *Store) User(id string) (*User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, found := s.users.get(id)
	if !found {
		return nil, serrors.NotFound(errors.Errorf("user %q not found", id))
	}
	return copyOf(user), nil
}

// Users returns all users in registration order.
func (s *Store) Users() []*User {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.users.list(nil)
}

// CreateProduct stores a new product.
func (s *Store) CreateProduct(product Product) (*Product, error) {
	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	product.ID = s.newID()
	product.CreatedAt = s.clock.Now()
	s.products.put(product.ID, copyOf(&product))
	return &product, nil
}

// UpdateProduct replaces the attributes of an existing product.
func (s *Store) UpdateProduct(id string, product Product) (*Product, error) {
	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, found := s.products.get(id)
	if !found {
		return nil, serrors.NotFound(errors.Errorf("product %q not found", id))
	}
	product.ID = id
	product.CreatedAt = existing.CreatedAt
	s.products.put(id, copyOf(&product))
	return &product, nil
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.products.delete(id) {
		return serrors.NotFound(errors.Errorf("product %q not found", id))
	}
	return nil
}

// Product returns the product with the given ID.
func (s *Store) Product(id string) (*Product, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	product, found := s.products.get(id)
	if !found {
		return nil, serrors.NotFound(errors.Errorf("product %q not found", id))
	}
	return copyOf(product), nil
}

// Products returns the products whose name contains the given keyword,
// ignoring case. An empty keyword matches all products.
func (s *Store) Products(keyword string) []*Product {
	keyword = strings.ToLower(keyword)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.products.list(func(p *Product) bool {
		return strings.Contains(strings.ToLower(p.Name), keyword)
	})
}

func validateProduct(product *Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return serrors.BadRequest(errors.New("product name is required"))
	}
	if product.Price < 0 || math.IsNaN(product.Price) || math.IsInf(product.Price, 0) {
		return serrors.BadRequest(errors.Errorf("invalid product price %v", product.Price))
	}
	if product.Stock < 0 {
		return serrors.BadRequest(errors.Errorf("invalid product stock %d", product.Stock))
	}
	return nil
}

// CreateOrder stores a new order for the given items.
// Every item must reference an existing product with sufficient stock.
// The stock of the ordered products is reduced and the prices are taken
// from the products.
func (s *Store) CreateOrder(userID string, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, serrors.BadRequest(errors.New("order has no items"))
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	requested := map[string]int{}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, serrors.BadRequest(errors.Errorf("invalid quantity %d for product %q", item.Quantity, item.ProductID))
		}
		product, found := s.products.get(item.ProductID)
		if !found {
			return nil, serrors.BadRequest(errors.Errorf("product %q not found", item.ProductID))
		}
		requested[item.ProductID] += item.Quantity
		if requested[item.ProductID] > product.Stock {
			return nil, serrors.BadRequest(errors.Errorf("insufficient stock for product %q", item.ProductID))
		}
	}

	order := Order{
		UserID: userID,
		Items:  make([]OrderItem, 0, len(items)),
		Status: OrderStatusProcessing,
	}
	for _, item := range items {
		product, _ := s.products.get(item.ProductID)
		product.Stock -= item.Quantity
		order.Items = append(order.Items, OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		order.TotalPrice += product.Price * float64(item.Quantity)
	}
	order.TotalPrice = math.Round(order.TotalPrice*100) / 100
	order.ID = s.newID()
	order.CreatedAt = s.clock.Now()
	s.orders.put(order.ID, copyOf(&order))
	return &order, nil
}

// Order returns the order with the given ID.
func (s *Store) Order(id string) (*Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	order, found := s.orders.get(id)
	if !found {
		return nil, serrors.NotFound(errors.Errorf("order %q not found", id))
	}
	return copyOf(order), nil
}

// Orders returns all orders in creation order.
func (s *Store) Orders() []*Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.orders.list(nil)
}

// ProcessPayment pays an order. The amount must equal the total price of
// the order and an order can only be paid once.
func (s *Store) ProcessPayment(orderID string, amount float64) (*Payment, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	order, found := s.orders.get(orderID)
	if !found {
		return nil, serrors.BadRequest(errors.Errorf("order %q not found", orderID))
	}
	if order.Status == OrderStatusPaid {
		return nil, serrors.BadRequest(errors.Errorf("order %q is already paid", orderID))
	}
	if math.Abs(amount-order.TotalPrice) > 0.005 {
		return nil, serrors.BadRequest(errors.Errorf("amount %.2f does not match order total %.2f", amount, order.TotalPrice))
	}

	order.Status = OrderStatusPaid
	payment := Payment{
		ID:        s.newID(),
		OrderID:   orderID,
		Amount:    amount,
		Status:    PaymentStatusSucceeded,
		CreatedAt: s.clock.Now(),
	}
	s.payments.put(payment.ID, copyOf(&payment))
	return &payment, nil
}

// Payment returns the payment with the given ID.
func (s *Store) Payment(id string) (*Payment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	payment, found := s.payments.get(id)
	if !found {
		return nil, serrors.NotFound(errors.Errorf("payment %q not found", id))
	}
	return copyOf(payment), nil
}
