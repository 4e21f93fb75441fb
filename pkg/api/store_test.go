package api

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	serrors "github.com/mernshop/shop-backend/pkg/errors"
	"gotest.tools/v3/assert"
)

var fakeNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	clk := clock.NewMock()
	clk.Set(fakeNow)
	store := NewStore(clk)
	var mutex sync.Mutex
	next := 0
	store.newID = func() string {
		mutex.Lock()
		defer mutex.Unlock()
		next++
		return fmt.Sprintf("id%d", next)
	}
	return store
}

func Test_NewStore_GeneratesUUIDs(t *testing.T) {
	t.Parallel()

	// SETUP
	store := NewStore(clock.NewMock())

	// EXERCISE
	user, err := store.CreateUser(User{Name: "Ann", Email: "ann@example.com"})

	// VERIFY
	assert.NilError(t, err)
	assert.Equal(t, len(user.ID), 36)
}

func Test_Store_CreateUser(t *testing.T) {
	t.Parallel()

	// SETUP
	store := newTestStore()

	// EXERCISE
	user, err := store.CreateUser(User{Name: " Ann ", Email: "Ann <ANN@example.com>", Role: "admin"})

	// VERIFY
	assert.NilError(t, err)
	assert.DeepEqual(t, user, &User{
		ID:        "id1",
		Name:      "Ann",
		Email:     "ann@example.com",
		Role:      "admin",
		CreatedAt: fakeNow,
	})
	stored, err := store.User("id1")
	assert.NilError(t, err)
	assert.DeepEqual(t, stored, user)
}

func Test_Store_CreateUser_Invalid(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name          string
		user          User
		expectedError string
	}{
		{"no_name", User{Email: "a@example.com"}, "user name is required"},
		{"bad_email", User{Name: "A", Email: "nope"}, `invalid email address "nope"`},
		{"duplicate_email", User{Name: "B", Email: "a@example.com"}, `email address "a@example.com" is already registered`},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// SETUP
			store := newTestStore()
			_, err := store.CreateUser(User{Name: "A", Email: "a@example.com"})
			assert.NilError(t, err)

			// EXERCISE
			_, err = store.CreateUser(tc.user)

			// VERIFY
			assert.Error(t, err, tc.expectedError)
			assert.Equal(t, serrors.StatusOf(err), http.StatusBadRequest)
			assert.Equal(t, len(store.Users()), 1)
		})
	}
}

func Test_Store_ReturnsCopies(t *testing.T) {
	t.Parallel()

	// SETUP
	store := newTestStore()
	product, err := store.CreateProduct(Product{Name: "Shoe", Price: 10, Stock: 3})
	assert.NilError(t, err)
	order, err := store.CreateOrder("", []OrderItem{{ProductID: product.ID, Quantity: 1}})
	assert.NilError(t, err)

	// EXERCISE
	product.Stock = 100
	order.Items[0].Quantity = 100
	listed := store.Products("")
	listed[0].Name = "changed"

	// VERIFY
	storedProduct, err := store.Product(product.ID)
	assert.NilError(t, err)
	assert.Equal(t, storedProduct.Stock, 2)
	assert.Equal(t, storedProduct.Name, "Shoe")
	storedOrder, err := store.Order(order.ID)
	assert.NilError(t, err)
	assert.Equal(t, storedOrder.Items[0].Quantity, 1)
}

func Test_Store_Products_Keyword(t *testing.T) {
	t.Parallel()

	// SETUP
	store := newTestStore()
	for _, name := range []string{"Running Shoe", "Shirt", "Dress shoe"} {
		_, err := store.CreateProduct(Product{Name: name})
		assert.NilError(t, err)
	}

	// EXERCISE
	result := store.Products("SHOE")

	// VERIFY
	assert.Equal(t, len(result), 2)
	assert.Equal(t, result[0].Name, "Running Shoe")
	assert.Equal(t, result[1].Name, "Dress shoe")
	assert.Equal(t, len(store.Products("")), 3)
}

func Test_Store_UpdateAndDeleteProduct(t *testing.T) {
	t.Parallel()

	// SETUP
	store := newTestStore()
	product, err := store.CreateProduct(Product{Name: "Shoe", Price: 10})
	assert.NilError(t, err)

	// EXERCISE
	updated, err := store.UpdateProduct(product.ID, Product{Name: "Boot", Price: 20, Stock: 1})

	// VERIFY
	assert.NilError(t, err)
	assert.DeepEqual(t, updated, &Product{ID: product.ID, Name: "Boot", Price: 20, Stock: 1, CreatedAt: fakeNow})

	assert.NilError(t, store.DeleteProduct(product.ID))
	_, err = store.Product(product.ID)
	assert.Equal(t, serrors.StatusOf(err), http.StatusNotFound)
	err = store.DeleteProduct(product.ID)
	assert.Equal(t, serrors.StatusOf(err), http.StatusNotFound)
	_, err = store.UpdateProduct(product.ID, Product{Name: "Boot"})
	assert.Equal(t, serrors.StatusOf(err), http.StatusNotFound)
}

func Test_Store_CreateOrder(t *testing.T) {
	t.Parallel()

	// SETUP
	store := newTestStore()
	shoe, err := store.CreateProduct(Product{Name: "Shoe", Price: 19.99, Stock: 5})
	assert.NilError(t, err)
	shirt, err := store.CreateProduct(Product{Name: "Shirt", Price: 5.5, Stock: 1})
	assert.NilError(t, err)

	// EXERCISE
	order, err := store.CreateOrder("u1", []OrderItem{
		{ProductID: shoe.ID, Quantity: 2, Price: 0.01},
		{ProductID: shirt.ID, Quantity: 1},
	})

	// VERIFY
	assert.NilError(t, err)
	assert.DeepEqual(t, order, &Order{
		ID:     "id3",
		UserID: "u1",
		Items: []OrderItem{
			{ProductID: shoe.ID, Name: "Shoe", Quantity: 2, Price: 19.99},
			{ProductID: shirt.ID, Name: "Shirt", Quantity: 1, Price: 5.5},
		},
		TotalPrice: 45.48,
		Status:     OrderStatusProcessing,
		CreatedAt:  fakeNow,
	})
	storedShoe, _ := store.Product(shoe.ID)
	assert.Equal(t, storedShoe.Stock, 3)
	storedShirt, _ := store.Product(shirt.ID)
	assert.Equal(t, storedShirt.Stock, 0)
}

func Test_Store_CreateOrder_Invalid(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name          string
		items         []OrderItem
		expectedError string
	}{
		{"no_items", nil, "order has no items"},
		{"unknown_product", []OrderItem{{ProductID: "x", Quantity: 1}}, `product "x" not found`},
		{"zero_quantity", []OrderItem{{ProductID: "id1", Quantity: 0}}, `invalid quantity 0 for product "id1"`},
		{"insufficient_stock", []OrderItem{{ProductID: "id1", Quantity: 3}}, `insufficient stock for product "id1"`},
		{"insufficient_stock_summed", []OrderItem{{ProductID: "id1", Quantity: 1}, {ProductID: "id1", Quantity: 2}}, `insufficient stock for product "id1"`},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// SETUP
			store := newTestStore()
			_, err := store.CreateProduct(Product{Name: "Shoe", Price: 10, Stock: 2})
			assert.NilError(t, err)

			// EXERCISE
			_, err = store.CreateOrder("", tc.items)

			// VERIFY
			assert.Error(t, err, tc.expectedError)
			assert.Equal(t, serrors.StatusOf(err), http.StatusBadRequest)
			product, _ := store.Product("id1")
			assert.Equal(t, product.Stock, 2)
			assert.Equal(t, len(store.Orders()), 0)
		})
	}
}

func Test_Store_ProcessPayment(t *testing.T) {
	t.Parallel()

	// SETUP
	store := newTestStore()
	product, err := store.CreateProduct(Product{Name: "Shoe", Price: 10, Stock: 2})
	assert.NilError(t, err)
	order, err := store.CreateOrder("", []OrderItem{{ProductID: product.ID, Quantity: 2}})
	assert.NilError(t, err)

	// EXERCISE
	_, wrongAmountErr := store.ProcessPayment(order.ID, 5)
	payment, err := store.ProcessPayment(order.ID, 20)
	_, secondErr := store.ProcessPayment(order.ID, 20)
	_, unknownErr := store.ProcessPayment("unknown", 20)

	// VERIFY
	assert.Error(t, wrongAmountErr, "amount 5.00 does not match order total 20.00")
	assert.NilError(t, err)
	assert.DeepEqual(t, payment, &Payment{
		ID:        "id3",
		OrderID:   order.ID,
		Amount:    20,
		Status:    PaymentStatusSucceeded,
		CreatedAt: fakeNow,
	})
	assert.Error(t, secondErr, fmt.Sprintf("order %q is already paid", order.ID))
	assert.Error(t, unknownErr, `order "unknown" not found`)

	storedOrder, err := store.Order(order.ID)
	assert.NilError(t, err)
	assert.Equal(t, storedOrder.Status, OrderStatusPaid)
	storedPayment, err := store.Payment(payment.ID)
	assert.NilError(t, err)
	assert.DeepEqual(t, storedPayment, payment)
}

func Test_Store_ConcurrentOrders(t *testing.T) {
	t.Parallel()

	// SETUP
	const stock = 50
	store := newTestStore()
	product, err := store.CreateProduct(Product{Name: "Shoe", Price: 1, Stock: stock})
	assert.NilError(t, err)

	// EXERCISE
	var wg sync.WaitGroup
	for i := 0; i < 2*stock; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.CreateOrder("", []OrderItem{{ProductID: product.ID, Quantity: 1}})
		}()
	}
	wg.Wait()

	// VERIFY
	assert.Equal(t, len(store.Orders()), stock)
	stored, _ := store.Product(product.ID)
	assert.Equal(t, stored.Stock, 0)
}
