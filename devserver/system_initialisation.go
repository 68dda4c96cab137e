package devserver

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/internal/config"
)

// InitialiseSystem creates the admin user from configuration and, unless disabled, the demo data set
func (s *Server) InitialiseSystem(cfg config.DevServerConfig) error {
	admin, err := s.data.AddAccount(adminapi.UserInput{
		Name:     "Admin",
		Email:    cfg.GetAdminEmail(),
		Role:     adminapi.RoleAdmin,
		Status:   adminapi.UserActive,
		Password: cfg.GetAdminPassword(),
	})
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to create admin user: %w", err)
	}

	s.logger.Info().
		Str("email", admin.Email).
		Str("issuer", cfg.GetIssuer()).
		Dur("access_ttl", cfg.GetAccessTokenTTL()).
		Bool("rotate_refresh", cfg.GetRotateRefreshTokens()).
		Msg("admin user ready")

	if !s.seed {
		return nil
	}
	if err := s.seedDemoData(); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to seed demo data: %w", err)
	}
	return nil
}

func (s *Server) seedDemoData() error {
	if _, err := s.data.AddAccount(adminapi.UserInput{
		Name: "Erin Editor", Email: "editor@example.com", Role: adminapi.RoleEditor, Password: "Editor123",
	}); err != nil {
		return err
	}
	customer, err := s.data.AddAccount(adminapi.UserInput{
		Name: "Casey Customer", Email: "casey@example.com", Role: adminapi.RoleCustomer, Password: "Customer123",
	})
	if err != nil {
		return err
	}

	drill := s.data.CreateProduct(adminapi.Product{
		Name:      "18V Cordless Drill",
		Category:  "Drills",
		Brand:     "Makita",
		PowerType: "Cordless (Battery)",
		SKU:       "MAK-DRL-18V",
		Price:     129.99,
		Stock:     25,
		Images:    []string{"https://example.com/images/drill.jpg"},
		Specifications: []adminapi.Specification{
			{Key: "Voltage", Value: "18V"},
			{Key: "Chuck", Value: "13mm"},
		},
	})
	saw := s.data.CreateProduct(adminapi.Product{
		Name:      "Circular Saw",
		Category:  "Saws",
		Brand:     "DeWalt",
		PowerType: "Corded Electric",
		SKU:       "DEW-SAW-185",
		Price:     89.5,
		Stock:     8,
		Images:    []string{"https://example.com/images/saw.jpg"},
	})
	s.data.CreateProduct(adminapi.Product{
		Name:      "Pliers Set",
		Category:  "Hand Tools",
		Brand:     "Knipex",
		PowerType: "Manual",
		SKU:       "KNI-PLR-3",
		Price:     49,
		Stock:     0,
		Images:    []string{"https://example.com/images/pliers.jpg"},
	})

	shipping := adminapi.Address{Line1: "1 Main Street", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US"}
	buyer := adminapi.Customer{Name: customer.Name, Email: customer.Email}
	now := NowTimeFunc()
	s.data.AddOrder(adminapi.Order{
		Status:          adminapi.OrderPending,
		Customer:        buyer,
		ShippingAddress: shipping,
		Payment:         adminapi.Payment{Method: "Credit Card", CardNumber: "**** 4242", Status: "paid"},
		Items:           []adminapi.OrderItem{{ProductID: drill.ID, Name: drill.Name, Price: drill.Price, Quantity: 1}},
		ShippingCost:    5,
		CreatedAt:       now.Add(-2 * time.Hour),
	})
	s.data.AddOrder(adminapi.Order{
		Status:          adminapi.OrderShipped,
		Customer:        buyer,
		ShippingAddress: shipping,
		Payment:         adminapi.Payment{Method: "PayPal", Status: "paid"},
		Items: []adminapi.OrderItem{
			{ProductID: saw.ID, Name: saw.Name, Price: saw.Price, Quantity: 2},
		},
		ShippingCost: 10,
		CreatedAt:    now.Add(-48 * time.Hour),
	})
	s.data.AddOrder(adminapi.Order{
		Status:          adminapi.OrderCancelled,
		Customer:        buyer,
		ShippingAddress: shipping,
		Payment:         adminapi.Payment{Method: "Cash on Delivery"},
		Items:           []adminapi.OrderItem{{ProductID: drill.ID, Name: drill.Name, Price: drill.Price, Quantity: 3}},
		CreatedAt:       now.Add(-72 * time.Hour),
	})
	return nil
}
