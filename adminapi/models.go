package adminapi

import (
	"time"
)

// Role of a store user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEditor   Role = "editor"
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
)

// Roles lists every role in display order
var Roles = []Role{RoleAdmin, RoleEditor, RoleCustomer, RoleVendor}

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
	UserPending   UserStatus = "pending"
)

var UserStatuses = []UserStatus{UserActive, UserInactive, UserSuspended, UserPending}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderCompleted, OrderCancelled}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderCompleted},
}

// NextStatuses returns the statuses an order in status s may move to. Completed and cancelled
// orders are final.
func (s OrderStatus) NextStatuses() []OrderStatus {
	return orderTransitions[s]
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Product struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	PowerType      string          `json:"powerType,omitempty"`
	SKU            string          `json:"sku,omitempty"`
	Price          float64         `json:"price" validate:"gt=0"`
	Stock          int             `json:"stock" validate:"gte=0"`
	Images         []string        `json:"images,omitempty" validate:"min=1,dive,required"`
	Specifications []Specification `json:"specifications,omitempty"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt,omitempty"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Payment struct {
	Method     string `json:"method"`
	CardNumber string `json:"cardNumber,omitempty"` // masked
	Status     string `json:"status,omitempty"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID              string      `json:"id"`
	Number          string      `json:"number"`
	Status          OrderStatus `json:"status"`
	Customer        Customer    `json:"customer"`
	ShippingAddress Address     `json:"shippingAddress"`
	Payment         Payment     `json:"payment"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	ShippingCost    float64     `json:"shippingCost"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type OrderStats struct {
	TotalOrders  int                 `json:"totalOrders"`
	TotalRevenue float64             `json:"totalRevenue"`
	ByStatus     map[OrderStatus]int `json:"byStatus"`
}

type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// UserInput is the body of user create and update. Password is required on create only.
type UserInput struct {
	Name            string     `json:"name" validate:"required"`
	Email           string     `json:"email" validate:"required,email"`
	Role            Role       `json:"role" validate:"required,oneof=admin editor customer vendor"`
	Status          UserStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended pending"`
	Password        string     `json:"password,omitempty" validate:"omitempty,min=8,max=30"`
	ConfirmPassword string     `json:"confirmPassword,omitempty" validate:"eqfield=Password"`
}

type UserStats struct {
	Total    int                `json:"total"`
	ByRole   map[Role]int       `json:"byRole"`
	ByStatus map[UserStatus]int `json:"byStatus"`
}

type ActivityLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type GeneralSettings struct {
	StoreName          string `json:"storeName" validate:"required"`
	StoreEmail         string `json:"storeEmail" validate:"required,email"`
	StorePhone         string `json:"storePhone,omitempty"`
	StoreAddress       string `json:"storeAddress,omitempty"`
	Timezone           string `json:"timezone" validate:"required"`
	DateFormat         string `json:"dateFormat" validate:"required"`
	TimeFormat         string `json:"timeFormat" validate:"required"`
	Currency           string `json:"currency" validate:"required"`
	MaintenanceMode    bool   `json:"maintenanceMode"`
	MaintenanceMessage string `json:"maintenanceMessage,omitempty"`
}

type EmailSettings struct {
	SMTPHost     string `json:"smtpHost" validate:"required"`
	SMTPPort     int    `json:"smtpPort" validate:"gt=0,lte=65535"`
	SMTPUsername string `json:"smtpUsername,omitempty"`
	SMTPPassword string `json:"smtpPassword,omitempty"`
	Encryption   string `json:"encryption,omitempty" validate:"omitempty,oneof=none ssl tls"`
	FromEmail    string `json:"fromEmail" validate:"required,email"`
	FromName     string `json:"fromName,omitempty"`
}

type StripeSettings struct {
	Enabled        bool   `json:"enabled"`
	PublishableKey string `json:"publishableKey,omitempty" validate:"required_if=Enabled true"`
	SecretKey      string `json:"secretKey,omitempty" validate:"required_if=Enabled true"`
	WebhookSecret  string `json:"webhookSecret,omitempty" validate:"required_if=Enabled true"`
	TestMode       bool   `json:"testMode"`
}

type PayPalSettings struct {
	Enabled      bool   `json:"enabled"`
	ClientID     string `json:"clientId,omitempty" validate:"required_if=Enabled true"`
	ClientSecret string `json:"clientSecret,omitempty" validate:"required_if=Enabled true"`
	Environment  string `json:"environment,omitempty" validate:"omitempty,oneof=sandbox production"`
}

type BankTransferSettings struct {
	Enabled       bool   `json:"enabled"`
	AccountName   string `json:"accountName,omitempty" validate:"required_if=Enabled true"`
	AccountNumber string `json:"accountNumber,omitempty" validate:"required_if=Enabled true"`
	BankName      string `json:"bankName,omitempty" validate:"required_if=Enabled true"`
	Instructions  string `json:"instructions,omitempty"`
}

type CODSettings struct {
	Enabled      bool   `json:"enabled"`
	Instructions string `json:"instructions,omitempty"`
}

// Payment gateway identifiers, as used in the test endpoint path
const (
	GatewayStripe       = "stripe"
	GatewayPayPal       = "paypal"
	GatewayBankTransfer = "bank_transfer"
	GatewayCOD          = "cod"
)

type PaymentGateways struct {
	Stripe       StripeSettings       `json:"stripe"`
	PayPal       PayPalSettings       `json:"paypal"`
	BankTransfer BankTransferSettings `json:"bank_transfer"`
	COD          CODSettings          `json:"cod"`
}

type GatewayTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}
