package devserver

import (
	"net/http"

	"github.com/jrsteele09/go-store-admin/adminapi"
)

func (s *Server) GetGeneralSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.GeneralSettings())
	}
}

func (s *Server) UpdateGeneralSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var g adminapi.GeneralSettings
		if err := decodeBody(r, &g); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(g); err != nil {
			writeError(w, err)
			return
		}
		s.data.SetGeneralSettings(g)
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "settings_updated", "general", clientIP(r))
		writeJSON(w, http.StatusOK, g)
	}
}

func (s *Server) GetEmailSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.EmailSettings())
	}
}

func (s *Server) UpdateEmailSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e adminapi.EmailSettings
		if err := decodeBody(r, &e); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(e); err != nil {
			writeError(w, err)
			return
		}
		s.data.SetEmailSettings(e)
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "settings_updated", "email", clientIP(r))
		writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) GetPaymentGatewaysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.PaymentGateways())
	}
}

func (s *Server) UpdatePaymentGatewaysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p adminapi.PaymentGateways
		if err := decodeBody(r, &p); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(p); err != nil {
			writeError(w, err)
			return
		}
		s.data.SetPaymentGateways(p)
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "settings_updated", "payment gateways", clientIP(r))
		writeJSON(w, http.StatusOK, p)
	}
}

// TestPaymentGatewayHandler validates the posted gateway settings. There is no real provider to call,
// so complete settings count as a successful connection.
func (s *Server) TestPaymentGatewayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var target any
		switch gateway := r.PathValue("gateway"); gateway {
		case adminapi.GatewayStripe:
			target = &adminapi.StripeSettings{}
		case adminapi.GatewayPayPal:
			target = &adminapi.PayPalSettings{}
		case adminapi.GatewayBankTransfer:
			target = &adminapi.BankTransferSettings{}
		case adminapi.GatewayCOD:
			target = &adminapi.CODSettings{}
		default:
			writeJSONError(w, "not_found", "unknown payment gateway "+gateway, http.StatusNotFound)
			return
		}
		if err := decodeBody(r, target); err != nil {
			writeError(w, err)
			return
		}

		// A connection test is always run against enabled settings
		setEnabled(target)
		if err := s.check(target); err != nil {
			writeJSON(w, http.StatusOK, adminapi.GatewayTestResult{Success: false, Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, adminapi.GatewayTestResult{Success: true, Message: "Connection successful"})
	}
}

func setEnabled(target any) {
	switch t := target.(type) {
	case *adminapi.StripeSettings:
		t.Enabled = true
	case *adminapi.PayPalSettings:
		t.Enabled = true
	case *adminapi.BankTransferSettings:
		t.Enabled = true
	case *adminapi.CODSettings:
		t.Enabled = true
	}
}
