package adminapi

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-store-admin/apiclient"
)

const PathSettings = "/admin/settings"

type SettingsService struct {
	c *apiclient.Client
}

func (s *SettingsService) General(ctx context.Context) (*GeneralSettings, error) {
	var g GeneralSettings
	if err := s.c.Get(ctx, PathSettings+"/general", nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *SettingsService) UpdateGeneral(ctx context.Context, g GeneralSettings) (*GeneralSettings, error) {
	var updated GeneralSettings
	if err := s.c.Put(ctx, PathSettings+"/general", g, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *SettingsService) Email(ctx context.Context) (*EmailSettings, error) {
	var e EmailSettings
	if err := s.c.Get(ctx, PathSettings+"/email", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SettingsService) UpdateEmail(ctx context.Context, e EmailSettings) (*EmailSettings, error) {
	var updated EmailSettings
	if err := s.c.Put(ctx, PathSettings+"/email", e, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *SettingsService) PaymentGateways(ctx context.Context) (*PaymentGateways, error) {
	var p PaymentGateways
	if err := s.c.Get(ctx, PathSettings+"/payment-gateways", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SettingsService) UpdatePaymentGateways(ctx context.Context, p PaymentGateways) (*PaymentGateways, error) {
	var updated PaymentGateways
	if err := s.c.Put(ctx, PathSettings+"/payment-gateways", p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// TestPaymentGateway checks the connection to gateway with the given settings without saving them
func (s *SettingsService) TestPaymentGateway(ctx context.Context, gateway string, data any) (*GatewayTestResult, error) {
	var result GatewayTestResult
	path := PathSettings + "/payment-gateways/" + url.PathEscape(gateway) + "/test"
	if err := s.c.Post(ctx, path, data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
