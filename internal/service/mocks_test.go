package service

import (
	"context"
	"errors"
	"time"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/notify"
)

// Mock ProductRepository for testing
type mockProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[int64]*domain.Product),
		nextID:   1,
	}
}

func (m *mockProductRepository) Create(product *domain.Product) error {
	product.ID = m.nextID
	m.nextID++
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) GetByID(id int64) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, nil
	}
	return product, nil
}

func (m *mockProductRepository) Update(product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return errors.New("product not found")
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(id int64) error {
	product, exists := m.products[id]
	if !exists {
		return errors.New("product not found")
	}
	product.Status = domain.ProductStatusDeleted
	return nil
}

func (m *mockProductRepository) List(req *domain.ProductListRequest) ([]*domain.Product, int64, error) {
	var result []*domain.Product
	for _, product := range m.products {
		if product.Status == domain.ProductStatusDeleted {
			continue
		}
		result = append(result, product)
	}
	return result, int64(len(result)), nil
}

func (m *mockProductRepository) GetByIDs(ids []int64) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, id := range ids {
		if product, exists := m.products[id]; exists {
			result = append(result, product)
		}
	}
	return result, nil
}

func (m *mockProductRepository) Count() (int64, error) {
	return int64(len(m.products)), nil
}

func (m *mockProductRepository) CountByStatus(status domain.ProductStatus) (int64, error) {
	count := int64(0)
	for _, product := range m.products {
		if product.Status == status {
			count++
		}
	}
	return count, nil
}

// Mock UserRepository for testing
type mockUserRepository struct {
	users  map[string]*domain.User // username -> user
	emails map[string]*domain.User // email -> user
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[string]*domain.User),
		emails: make(map[string]*domain.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) Create(user *domain.User) error {
	if _, exists := m.users[user.Username]; exists {
		return errors.New("username already exists")
	}
	if _, exists := m.emails[user.Email]; exists {
		return errors.New("email already exists")
	}

	user.ID = m.nextID
	m.nextID++

	m.users[user.Username] = user
	m.emails[user.Email] = user
	return nil
}

func (m *mockUserRepository) GetByID(id int64) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByUsername(username string) (*domain.User, error) {
	user, exists := m.users[username]
	if !exists {
		return nil, nil
	}
	return user, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*domain.User, error) {
	user, exists := m.emails[email]
	if !exists {
		return nil, nil
	}
	return user, nil
}

func (m *mockUserRepository) Update(user *domain.User) error {
	return nil
}

func (m *mockUserRepository) Deactivate(id int64) error {
	for _, user := range m.users {
		if user.ID == id {
			user.IsActive = false
			return nil
		}
	}
	return errors.New("user not found")
}

// Mock LoyaltyRepository for testing
type mockLoyaltyRepository struct {
	accounts map[int64]*domain.LoyaltyAccount // userID -> account
	nextID   int64
	failAdd  bool
}

func newMockLoyaltyRepository() *mockLoyaltyRepository {
	return &mockLoyaltyRepository{
		accounts: make(map[int64]*domain.LoyaltyAccount),
		nextID:   1,
	}
}

func (m *mockLoyaltyRepository) GetByUserID(userID int64) (*domain.LoyaltyAccount, error) {
	account, exists := m.accounts[userID]
	if !exists {
		return nil, nil
	}
	return account, nil
}

func (m *mockLoyaltyRepository) Create(account *domain.LoyaltyAccount) error {
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.UserID] = account
	return nil
}

func (m *mockLoyaltyRepository) Add(userID int64, points int) error {
	if m.failAdd {
		return errors.New("add points failed")
	}
	account, exists := m.accounts[userID]
	if !exists {
		return errors.New("loyalty account not found")
	}
	account.Balance += points
	return nil
}

func (m *mockLoyaltyRepository) Deduct(userID int64, points int) (bool, error) {
	account, exists := m.accounts[userID]
	if !exists {
		return false, nil
	}
	if account.Balance < points {
		return false, nil
	}
	account.Balance -= points
	return true, nil
}

// Mock CartStore for testing
type mockCartStore struct {
	carts map[string]*domain.Cart
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]*domain.Cart)}
}

func (m *mockCartStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, exists := m.carts[sessionID]
	if !exists {
		return domain.NewCart(), nil
	}
	return cart, nil
}

func (m *mockCartStore) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	m.carts[sessionID] = cart
	return nil
}

func (m *mockCartStore) Clear(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

// Mock SettingsService for testing
type mockSettingsService struct {
	settings *domain.LoyaltySettings
}

func newMockSettingsService(settings *domain.LoyaltySettings) *mockSettingsService {
	if settings == nil {
		settings = domain.DefaultLoyaltySettings()
	}
	return &mockSettingsService{settings: settings}
}

func (m *mockSettingsService) GetLoyalty() (*domain.LoyaltySettings, error) {
	return m.settings, nil
}

func (m *mockSettingsService) UpdateLoyalty(settings *domain.LoyaltySettings) error {
	m.settings = settings
	return nil
}

// Mock PaymentService for testing
type mockPaymentService struct {
	decline       bool
	chargedAmount float64
	chargeCount   int
}

func (m *mockPaymentService) Charge(ctx context.Context, method string, details domain.PaymentDetails, amount float64) (*PaymentResult, error) {
	m.chargeCount++
	if m.decline {
		return nil, ErrPaymentDeclined
	}
	m.chargedAmount = amount
	return &PaymentResult{TransactionID: "txn-test"}, nil
}

// Mock OrderRepository for testing
type mockOrderRepository struct {
	orders     []*domain.Order
	nextID     int64
	failCreate bool
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{nextID: 1}
}

func (m *mockOrderRepository) Create(order *domain.Order) error {
	if m.failCreate {
		return errors.New("create order failed")
	}
	order.ID = m.nextID
	m.nextID++
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepository) GetByID(id int64) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepository) GetByNumber(number string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.Number == number {
			return order, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepository) GetByUserID(userID int64, offset, limit int) ([]*domain.Order, int64, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.UserID != nil && *order.UserID == userID {
			result = append(result, order)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockOrderRepository) MarkPaid(id int64, paidAt time.Time) error {
	for _, order := range m.orders {
		if order.ID == id {
			order.Status = domain.OrderStatusPaid
			order.PaidAt = &paidAt
			return nil
		}
	}
	return errors.New("order not found")
}

func (m *mockOrderRepository) Count() (int64, error) {
	return int64(len(m.orders)), nil
}

// Mock notify.Sink for testing
type mockSink struct {
	events []*notify.Event
}

func (m *mockSink) Publish(ctx context.Context, event *notify.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockSink) Close() error {
	return nil
}
