package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/internal/ports"
)

// In-memory repository implementations shared by the use case tests.

type memOrderRepo struct {
	orders      map[string]*domain.Order
	updateCalls int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *memOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id)
	}
	copied := *order
	return &copied, nil
}

func (m *memOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	m.updateCalls++
	stored, ok := m.orders[order.ID]
	if !ok {
		return domain.NewNotFoundError("order", order.ID)
	}
	if stored.Version != order.Version {
		return domain.NewConflictError("order %s was modified concurrently", order.ID)
	}
	copied := *order
	copied.Version++
	m.orders[order.ID] = &copied
	order.Version++
	return nil
}

func (m *memOrderRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return domain.NewNotFoundError("order", id)
	}
	delete(m.orders, id)
	return nil
}

func (m *memOrderRepo) matches(order *domain.Order, filter domain.OrderFilter) bool {
	if filter.Status != nil && order.Status != *filter.Status {
		return false
	}
	if filter.ClientEmail != nil && order.Client.Email != *filter.ClientEmail {
		return false
	}
	if filter.ServiceType != nil && order.ServiceType != *filter.ServiceType {
		return false
	}
	return true
}

func (m *memOrderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if m.matches(order, filter) {
			copied := *order
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, filter.Limit, filter.Offset), nil
}

func (m *memOrderRepo) Count(ctx context.Context, filter domain.OrderFilter) (int, error) {
	count := 0
	for _, order := range m.orders {
		if m.matches(order, filter) {
			count++
		}
	}
	return count, nil
}

type memAuditRepo struct {
	entries    []*domain.AuditLogEntry
	failCreate bool
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (m *memAuditRepo) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	if m.failCreate {
		return domain.NewStorageError("audit create", errors.New("disk full"))
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuditRepo) matches(entry *domain.AuditLogEntry, filter domain.AuditFilter) bool {
	if filter.UserID != nil && entry.UserID != *filter.UserID {
		return false
	}
	if filter.ActionType != nil && entry.ActionType != *filter.ActionType {
		return false
	}
	if filter.EntityType != nil && entry.EntityType != *filter.EntityType {
		return false
	}
	if filter.EntityID != nil && entry.EntityID != *filter.EntityID {
		return false
	}
	if filter.DateFrom != nil && entry.Timestamp.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && entry.Timestamp.After(*filter.DateTo) {
		return false
	}
	return true
}

func (m *memAuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	var result []*domain.AuditLogEntry
	for _, entry := range m.entries {
		if m.matches(entry, filter) {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return page(result, filter.Limit, filter.Offset), nil
}

func (m *memAuditRepo) Count(ctx context.Context, filter domain.AuditFilter) (int, error) {
	count := 0
	for _, entry := range m.entries {
		if m.matches(entry, filter) {
			count++
		}
	}
	return count, nil
}

// byAction returns the stored entries with the given action type, oldest first.
func (m *memAuditRepo) byAction(action domain.AuditActionType) []*domain.AuditLogEntry {
	var result []*domain.AuditLogEntry
	for _, entry := range m.entries {
		if entry.ActionType == action {
			result = append(result, entry)
		}
	}
	return result
}

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id)
	}
	return user, nil
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.NewNotFoundError("user", username)
}

func (m *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return domain.NewNotFoundError("user", user.ID)
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.NewNotFoundError("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	var result []*domain.User
	for _, user := range m.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, limit, offset), nil
}

func (m *memUserRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

type memRequestRepo struct {
	requests map[string]*domain.ClientRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[string]*domain.ClientRequest)}
}

func (m *memRequestRepo) Create(ctx context.Context, request *domain.ClientRequest) error {
	m.requests[request.ID] = request
	return nil
}

func (m *memRequestRepo) FindByID(ctx context.Context, id string) (*domain.ClientRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("request", id)
	}
	return request, nil
}

func (m *memRequestRepo) Update(ctx context.Context, request *domain.ClientRequest) error {
	if _, ok := m.requests[request.ID]; !ok {
		return domain.NewNotFoundError("request", request.ID)
	}
	m.requests[request.ID] = request
	return nil
}

func (m *memRequestRepo) matches(request *domain.ClientRequest, filter domain.RequestFilter) bool {
	if filter.ClientID != nil && request.ClientID != *filter.ClientID {
		return false
	}
	if filter.Status != nil && request.Status != *filter.Status {
		return false
	}
	if filter.Category != nil && request.Category != *filter.Category {
		return false
	}
	return true
}

func (m *memRequestRepo) List(ctx context.Context, filter domain.RequestFilter) ([]*domain.ClientRequest, error) {
	var result []*domain.ClientRequest
	for _, request := range m.requests {
		if m.matches(request, filter) {
			result = append(result, request)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.After(result[j].SubmittedAt) })
	return page(result, filter.Limit, filter.Offset), nil
}

func (m *memRequestRepo) Count(ctx context.Context, filter domain.RequestFilter) (int, error) {
	count := 0
	for _, request := range m.requests {
		if m.matches(request, filter) {
			count++
		}
	}
	return count, nil
}

type memSubscriptionRepo struct {
	subscriptions map[string]*domain.Subscription
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{subscriptions: make(map[string]*domain.Subscription)}
}

func (m *memSubscriptionRepo) Create(ctx context.Context, subscription *domain.Subscription) error {
	m.subscriptions[subscription.ID] = subscription
	return nil
}

func (m *memSubscriptionRepo) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	subscription, ok := m.subscriptions[id]
	if !ok {
		return nil, domain.NewNotFoundError("subscription", id)
	}
	return subscription, nil
}

func (m *memSubscriptionRepo) Update(ctx context.Context, subscription *domain.Subscription) error {
	if _, ok := m.subscriptions[subscription.ID]; !ok {
		return domain.NewNotFoundError("subscription", subscription.ID)
	}
	m.subscriptions[subscription.ID] = subscription
	return nil
}

func (m *memSubscriptionRepo) matches(subscription *domain.Subscription, filter domain.SubscriptionFilter) bool {
	if filter.ClientID != nil && subscription.ClientID != *filter.ClientID {
		return false
	}
	if filter.Status != nil && subscription.Status != *filter.Status {
		return false
	}
	if filter.OrderID != nil && subscription.OrderID != *filter.OrderID {
		return false
	}
	return true
}

func (m *memSubscriptionRepo) List(ctx context.Context, filter domain.SubscriptionFilter) ([]*domain.Subscription, error) {
	var result []*domain.Subscription
	for _, subscription := range m.subscriptions {
		if m.matches(subscription, filter) {
			result = append(result, subscription)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return page(result, filter.Limit, filter.Offset), nil
}

func (m *memSubscriptionRepo) Count(ctx context.Context, filter domain.SubscriptionFilter) (int, error) {
	count := 0
	for _, subscription := range m.subscriptions {
		if m.matches(subscription, filter) {
			count++
		}
	}
	return count, nil
}

type memInvoiceRepo struct {
	invoices map[string]*domain.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[string]*domain.Invoice)}
}

func (m *memInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *memInvoiceRepo) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, domain.NewNotFoundError("invoice", id)
	}
	return invoice, nil
}

func (m *memInvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if _, ok := m.invoices[invoice.ID]; !ok {
		return domain.NewNotFoundError("invoice", invoice.ID)
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *memInvoiceRepo) matches(invoice *domain.Invoice, filter domain.InvoiceFilter) bool {
	if filter.ClientID != nil && invoice.ClientID != *filter.ClientID {
		return false
	}
	if filter.OrderID != nil && invoice.OrderID != *filter.OrderID {
		return false
	}
	if filter.Status != nil && invoice.Status != *filter.Status {
		return false
	}
	return true
}

func (m *memInvoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	var result []*domain.Invoice
	for _, invoice := range m.invoices {
		if m.matches(invoice, filter) {
			result = append(result, invoice)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IssueDate.After(result[j].IssueDate) })
	return page(result, filter.Limit, filter.Offset), nil
}

func (m *memInvoiceRepo) Count(ctx context.Context, filter domain.InvoiceFilter) (int, error) {
	count := 0
	for _, invoice := range m.invoices {
		if m.matches(invoice, filter) {
			count++
		}
	}
	return count, nil
}

type memBillingRepo struct {
	settings *domain.BillingSettings
}

func newMemBillingRepo() *memBillingRepo {
	return &memBillingRepo{}
}

func (m *memBillingRepo) Get(ctx context.Context) (domain.BillingSettings, error) {
	if m.settings == nil {
		return domain.DefaultBillingSettings(), nil
	}
	return *m.settings, nil
}

func (m *memBillingRepo) Save(ctx context.Context, settings domain.BillingSettings) error {
	m.settings = &settings
	return nil
}

// Fake services.

type fakePasswordService struct{}

func (f *fakePasswordService) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (f *fakePasswordService) VerifyPassword(password, hash string) (bool, error) {
	return hash == "hashed:"+password, nil
}

type fakeTokenService struct{}

func (f *fakeTokenService) GenerateAccessToken(user *domain.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Now().Add(time.Hour), nil
}

func (f *fakeTokenService) ValidateAccessToken(token string) (*ports.TokenClaims, error) {
	return nil, errors.New("not implemented")
}

type fakeRateLimiter struct {
	counts map[string]int
}

func newFakeRateLimiter() *fakeRateLimiter {
	return &fakeRateLimiter{counts: make(map[string]int)}
}

func (f *fakeRateLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return f.counts[key] < limit, nil
}

func (f *fakeRateLimiter) Increment(ctx context.Context, key string, window time.Duration) error {
	f.counts[key]++
	return nil
}

func (f *fakeRateLimiter) Reset(ctx context.Context, key string) error {
	delete(f.counts, key)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
