package devserver

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Data holds the store collections in memory
type Data struct {
	mu sync.RWMutex

	products    map[string]*adminapi.Product
	orders      map[string]*adminapi.Order
	accounts    map[string]*account
	activity    []adminapi.ActivityLog
	resetTokens map[string]resetToken

	general  adminapi.GeneralSettings
	email    adminapi.EmailSettings
	gateways adminapi.PaymentGateways
}

type resetToken struct {
	userID    string
	expiresAt time.Time
}

func NewData() *Data {
	return &Data{
		products:    map[string]*adminapi.Product{},
		orders:      map[string]*adminapi.Order{},
		accounts:    map[string]*account{},
		resetTokens: map[string]resetToken{},
		general: adminapi.GeneralSettings{
			StoreName:  "My Store",
			StoreEmail: "store@example.com",
			Timezone:   "UTC",
			DateFormat: "MM/DD/YYYY",
			TimeFormat: "12h",
			Currency:   "USD",
		},
		email: adminapi.EmailSettings{
			SMTPHost:   "localhost",
			SMTPPort:   1025,
			Encryption: "none",
			FromEmail:  "no-reply@example.com",
			FromName:   "My Store",
		},
		gateways: adminapi.PaymentGateways{
			Stripe:       adminapi.StripeSettings{TestMode: true},
			PayPal:       adminapi.PayPalSettings{Environment: "sandbox"},
			BankTransfer: adminapi.BankTransferSettings{Enabled: true, AccountName: "My Store Ltd", AccountNumber: "12345678", BankName: "Example Bank"},
			COD:          adminapi.CODSettings{Enabled: true},
		},
	}
}

func newID() string {
	return uuid.New().String()
}

// AddAccount creates a user with a bcrypt hash of password
func (d *Data) AddAccount(in adminapi.UserInput) (*adminapi.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("[Data AddAccount] hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.findAccountLocked(in.Email) != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "email %s is already registered", in.Email)
	}
	status := in.Status
	if status == "" {
		status = adminapi.UserActive
	}
	a := &account{
		User: adminapi.User{
			ID:        newID(),
			Name:      in.Name,
			Email:     strings.ToLower(in.Email),
			Role:      in.Role,
			Status:    status,
			CreatedAt: NowTimeFunc(),
		},
		PasswordHash: hash,
	}
	d.accounts[a.ID] = a
	u := a.User
	return &u, nil
}

func (d *Data) findAccountLocked(email string) *account {
	email = strings.ToLower(email)
	for _, a := range d.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

// Authenticate checks email and password and records the login
func (d *Data) Authenticate(email, password string) (*adminapi.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := d.findAccountLocked(email)
	if a == nil || !CheckPasswordHash(password, a.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}
	if !a.canUseAdminPanel() {
		return nil, errors.ErrForbidden
	}
	now := NowTimeFunc()
	a.LastLogin = &now
	u := a.User
	return &u, nil
}

// ActiveUser returns the user id if it exists and may still use the admin panel
func (d *Data) ActiveUser(id string) (*adminapi.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	if !a.canUseAdminPanel() {
		return nil, errors.ErrForbidden
	}
	u := a.User
	return &u, nil
}

func (d *Data) User(id string) (*adminapi.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	u := a.User
	return &u, nil
}

func (d *Data) ListUsers(p listQuery) adminapi.Page[adminapi.User] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]adminapi.User, 0, len(d.accounts))
	for _, a := range d.accounts {
		if p.status != "" && string(a.Status) != p.status {
			continue
		}
		if !p.matches(a.Name, a.Email) {
			continue
		}
		users = append(users, a.User)
	}
	sortBy(users, p.sort, map[string]func(a, b adminapi.User) int{
		"name":      func(a, b adminapi.User) int { return strings.Compare(a.Name, b.Name) },
		"email":     func(a, b adminapi.User) int { return strings.Compare(a.Email, b.Email) },
		"createdAt": func(a, b adminapi.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}, "createdAt")
	return paginate(users, p)
}

// UpdateUser applies in to user id. An empty password keeps the current one.
func (d *Data) UpdateUser(id string, in adminapi.UserInput) (*adminapi.User, error) {
	var hash string
	if in.Password != "" {
		var err error
		if hash, err = HashPassword(in.Password); err != nil {
			return nil, fmt.Errorf("[Data UpdateUser] hash password: %w", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	if other := d.findAccountLocked(in.Email); other != nil && other.ID != id {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "email %s is already registered", in.Email)
	}
	a.Name = in.Name
	a.Email = strings.ToLower(in.Email)
	a.Role = in.Role
	if in.Status != "" {
		a.Status = in.Status
	}
	if hash != "" {
		a.PasswordHash = hash
	}
	u := a.User
	return &u, nil
}

// PatchUser applies fn to user id under the lock
func (d *Data) PatchUser(id string, fn func(u *adminapi.User)) (*adminapi.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	fn(&a.User)
	u := a.User
	return &u, nil
}

func (d *Data) DeleteUser(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.accounts[id]; !ok {
		return errors.ErrNotFound
	}
	delete(d.accounts, id)
	return nil
}

func (d *Data) UserStats() adminapi.UserStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := adminapi.UserStats{
		ByRole:   map[adminapi.Role]int{},
		ByStatus: map[adminapi.UserStatus]int{},
	}
	for _, a := range d.accounts {
		stats.Total++
		stats.ByRole[a.Role]++
		stats.ByStatus[a.Status]++
	}
	return stats
}

// IssueResetToken creates a one hour password reset token. ok is false when email is unknown.
func (d *Data) IssueResetToken(email string) (token string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := d.findAccountLocked(email)
	if a == nil {
		return "", false
	}
	token = newID()
	d.resetTokens[token] = resetToken{userID: a.ID, expiresAt: NowTimeFunc().Add(time.Hour)}
	return token, true
}

// PendingResetToken returns the reset token last issued for email. The dev backend has no mail
// delivery, so tests and developers read it from here.
func (d *Data) PendingResetToken(email string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a := d.findAccountLocked(email)
	if a == nil {
		return "", false
	}
	var (
		latest string
		at     time.Time
	)
	for token, rt := range d.resetTokens {
		if rt.userID == a.ID && rt.expiresAt.After(at) {
			latest, at = token, rt.expiresAt
		}
	}
	return latest, latest != ""
}

// ResetPassword consumes token and sets a new password. It returns the user id.
func (d *Data) ResetPassword(token, password string) (string, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[Data ResetPassword] hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	rt, ok := d.resetTokens[token]
	if !ok {
		return "", errors.ErrInvalidToken
	}
	delete(d.resetTokens, token)
	if NowTimeFunc().After(rt.expiresAt) {
		return "", errors.ErrTokenExpired
	}
	a, ok := d.accounts[rt.userID]
	if !ok {
		return "", errors.ErrNotFound
	}
	a.PasswordHash = hash
	return a.ID, nil
}

// LogActivity appends an entry to the activity log of userID
func (d *Data) LogActivity(userID, action, description, ip string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.activity = append(d.activity, adminapi.ActivityLog{
		ID:          newID(),
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   ip,
		CreatedAt:   NowTimeFunc(),
	})
}

func (d *Data) ActivityLogs(userID string, p listQuery) adminapi.Page[adminapi.ActivityLog] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	logs := make([]adminapi.ActivityLog, 0)
	for i := len(d.activity) - 1; i >= 0; i-- {
		if l := d.activity[i]; l.UserID == userID && p.matches(l.Action, l.Description) {
			logs = append(logs, l)
		}
	}
	return paginate(logs, p)
}

func (d *Data) CreateProduct(p adminapi.Product) adminapi.Product {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := NowTimeFunc()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now
	d.products[p.ID] = &p
	return p
}

func (d *Data) Product(id string) (*adminapi.Product, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.products[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (d *Data) ListProducts(q listQuery) adminapi.Page[adminapi.Product] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	products := make([]adminapi.Product, 0, len(d.products))
	for _, p := range d.products {
		if q.status != "" && !strings.EqualFold(p.Category, q.status) {
			continue
		}
		if q.matches(p.Name, p.SKU, p.Brand) {
			products = append(products, *p)
		}
	}
	sortBy(products, q.sort, map[string]func(a, b adminapi.Product) int{
		"name":      func(a, b adminapi.Product) int { return strings.Compare(a.Name, b.Name) },
		"price":     func(a, b adminapi.Product) int { return cmp.Compare(a.Price, b.Price) },
		"stock":     func(a, b adminapi.Product) int { return cmp.Compare(a.Stock, b.Stock) },
		"createdAt": func(a, b adminapi.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}, "createdAt")
	return paginate(products, q)
}

// UpdateProduct replaces product id, keeping its identity and creation time
func (d *Data) UpdateProduct(id string, p adminapi.Product) (*adminapi.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.products[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = NowTimeFunc()
	d.products[id] = &p
	out := p
	return &out, nil
}

func (d *Data) UpdateStock(id string, stock int) (*adminapi.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.products[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	p.Stock = stock
	p.UpdatedAt = NowTimeFunc()
	out := *p
	return &out, nil
}

func (d *Data) DeleteProduct(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.products[id]; !ok {
		return errors.ErrNotFound
	}
	delete(d.products, id)
	return nil
}

func (d *Data) Categories() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	categories := make([]string, 0)
	for _, p := range d.products {
		if p.Category != "" && !slices.Contains(categories, p.Category) {
			categories = append(categories, p.Category)
		}
	}
	slices.Sort(categories)
	return categories
}

// AddOrder stores o and computes its totals
func (d *Data) AddOrder(o adminapi.Order) adminapi.Order {
	d.mu.Lock()
	defer d.mu.Unlock()

	if o.ID == "" {
		o.ID = newID()
	}
	if o.Number == "" {
		o.Number = fmt.Sprintf("ORD-%05d", len(d.orders)+1001)
	}
	if o.Status == "" {
		o.Status = adminapi.OrderPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = NowTimeFunc()
	}
	o.Subtotal = 0
	for _, item := range o.Items {
		o.Subtotal += item.Price * float64(item.Quantity)
	}
	o.Total = o.Subtotal + o.ShippingCost + o.Tax
	d.orders[o.ID] = &o
	return o
}

func (d *Data) Order(id string) (*adminapi.Order, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	o, ok := d.orders[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (d *Data) ListOrders(q listQuery) adminapi.Page[adminapi.Order] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	orders := make([]adminapi.Order, 0, len(d.orders))
	for _, o := range d.orders {
		if q.status != "" && string(o.Status) != q.status {
			continue
		}
		if q.matches(o.Number, o.Customer.Name, o.Customer.Email) {
			orders = append(orders, *o)
		}
	}
	sortBy(orders, q.sort, map[string]func(a, b adminapi.Order) int{
		"number":    func(a, b adminapi.Order) int { return strings.Compare(a.Number, b.Number) },
		"total":     func(a, b adminapi.Order) int { return cmp.Compare(a.Total, b.Total) },
		"createdAt": func(a, b adminapi.Order) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}, "-createdAt")
	return paginate(orders, q)
}

// ErrInvalidTransition is returned when an order may not move to the requested status
var ErrInvalidTransition = errors.Wrapf(errors.ErrInvalidRequest, "status transition not allowed")

func (d *Data) UpdateOrderStatus(id string, status adminapi.OrderStatus) (*adminapi.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, ok := d.orders[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	if !o.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}
	o.Status = status
	out := *o
	return &out, nil
}

// OrderStats counts orders created in [from, to]. Zero bounds are open. Cancelled orders add no revenue.
func (d *Data) OrderStats(from, to time.Time) adminapi.OrderStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := adminapi.OrderStats{ByStatus: map[adminapi.OrderStatus]int{}}
	for _, o := range d.orders {
		if !from.IsZero() && o.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && o.CreatedAt.After(to) {
			continue
		}
		stats.TotalOrders++
		stats.ByStatus[o.Status]++
		if o.Status != adminapi.OrderCancelled {
			stats.TotalRevenue += o.Total
		}
	}
	return stats
}

func (d *Data) GeneralSettings() adminapi.GeneralSettings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.general
}

func (d *Data) SetGeneralSettings(g adminapi.GeneralSettings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.general = g
}

func (d *Data) EmailSettings() adminapi.EmailSettings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.email
}

func (d *Data) SetEmailSettings(e adminapi.EmailSettings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.email = e
}

func (d *Data) PaymentGateways() adminapi.PaymentGateways {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.gateways
}

func (d *Data) SetPaymentGateways(p adminapi.PaymentGateways) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gateways = p
}

// listQuery is the parsed form of adminapi.ListParams
type listQuery struct {
	page   int
	limit  int
	search string
	status string
	sort   string
}

func (q listQuery) matches(fields ...string) bool {
	if q.search == "" {
		return true
	}
	needle := strings.ToLower(q.search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortBy sorts items by key, a field name optionally prefixed with "-" for descending order.
// Unknown keys fall back to def.
func sortBy[T any](items []T, key string, fields map[string]func(a, b T) int, def string) {
	if _, ok := fields[strings.TrimPrefix(key, "-")]; !ok {
		key = def
	}
	desc := strings.HasPrefix(key, "-")
	compare := fields[strings.TrimPrefix(key, "-")]
	slices.SortStableFunc(items, func(a, b T) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

func paginate[T any](items []T, q listQuery) adminapi.Page[T] {
	page := adminapi.Page[T]{Total: len(items), Page: q.page, Limit: q.limit}
	start := (q.page - 1) * q.limit
	if start >= len(items) {
		page.Items = []T{}
		return page
	}
	end := min(start+q.limit, len(items))
	page.Items = items[start:end]
	return page
}
