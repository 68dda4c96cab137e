package devserver

import (
	"github.com/jrsteele09/go-store-admin/adminapi"
)

// APIPrefix is the mount point of the REST API; clients use http://host:port/api as base URL
const APIPrefix = "/api"

// Route path constants
const (
	RouteLogin        = APIPrefix + adminapi.PathLogin
	RouteLogout       = APIPrefix + adminapi.PathLogout
	RouteProfile      = APIPrefix + adminapi.PathProfile
	RouteRefreshToken = APIPrefix + adminapi.PathRefreshToken

	RouteProducts          = APIPrefix + adminapi.PathProducts
	RouteProduct           = RouteProducts + "/{id}"
	RouteProductStock      = RouteProduct + "/stock"
	RouteProductCategories = RouteProducts + "/categories"

	RouteOrders        = APIPrefix + adminapi.PathOrders
	RouteOrder         = RouteOrders + "/{id}"
	RouteOrderStatus   = RouteOrder + "/status"
	RouteOrderStatuses = RouteOrders + "/statuses"
	RouteOrderStats    = RouteOrders + "/stats"

	RouteUsers              = APIPrefix + adminapi.PathUsers
	RouteUser               = RouteUsers + "/{id}"
	RouteUserStatus         = RouteUser + "/status"
	RouteUserRole           = RouteUser + "/role"
	RouteUserActivityLogs   = RouteUser + "/activity-logs"
	RouteUserStats          = RouteUsers + "/stats"
	RouteUserRoles          = RouteUsers + "/roles"
	RouteUserForgotPassword = RouteUsers + "/forgot-password"
	RouteUserResetPassword  = RouteUsers + "/reset-password"

	RouteSettingsGeneral         = APIPrefix + adminapi.PathSettings + "/general"
	RouteSettingsEmail           = APIPrefix + adminapi.PathSettings + "/email"
	RouteSettingsPaymentGateways = APIPrefix + adminapi.PathSettings + "/payment-gateways"
	RouteSettingsGatewayTest     = RouteSettingsPaymentGateways + "/{gateway}/test"
)

func (s *Server) initRoutes() {
	public := s.APIMiddleware()
	authed := s.APIMiddleware(s.RequireAuth())
	admin := s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())

	// Preflight for every API route
	s.RegisterRouteFunc("OPTIONS "+APIPrefix+"/", ChainMiddleware(s.NoContentHandler(), public...))

	// AUTH
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), authed...))

	// Password reset is reachable without a session
	s.RegisterRouteFunc("POST "+RouteUserForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteUserResetPassword, ChainMiddleware(s.ResetPasswordHandler(), public...))

	// PRODUCTS
	s.RegisterRouteFunc("GET "+RouteProducts, ChainMiddleware(s.ListProductsHandler(), authed...))
	s.RegisterRouteFunc("POST "+RouteProducts, ChainMiddleware(s.CreateProductHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteProductCategories, ChainMiddleware(s.CategoriesHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteProduct, ChainMiddleware(s.GetProductHandler(), authed...))
	s.RegisterRouteFunc("PUT "+RouteProduct, ChainMiddleware(s.UpdateProductHandler(), authed...))
	s.RegisterRouteFunc("DELETE "+RouteProduct, ChainMiddleware(s.DeleteProductHandler(), authed...))
	s.RegisterRouteFunc("PATCH "+RouteProductStock, ChainMiddleware(s.UpdateStockHandler(), authed...))

	// ORDERS
	s.RegisterRouteFunc("GET "+RouteOrders, ChainMiddleware(s.ListOrdersHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteOrderStatuses, ChainMiddleware(s.OrderStatusesHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteOrderStats, ChainMiddleware(s.OrderStatsHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteOrder, ChainMiddleware(s.GetOrderHandler(), authed...))
	s.RegisterRouteFunc("PATCH "+RouteOrderStatus, ChainMiddleware(s.UpdateOrderStatusHandler(), authed...))

	// USERS (admin only)
	s.RegisterRouteFunc("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), admin...))
	s.RegisterRouteFunc("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteUserStats, ChainMiddleware(s.UserStatsHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteUserRoles, ChainMiddleware(s.UserRolesHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteUser, ChainMiddleware(s.GetUserHandler(), admin...))
	s.RegisterRouteFunc("PUT "+RouteUser, ChainMiddleware(s.UpdateUserHandler(), admin...))
	s.RegisterRouteFunc("DELETE "+RouteUser, ChainMiddleware(s.DeleteUserHandler(), admin...))
	s.RegisterRouteFunc("PATCH "+RouteUserStatus, ChainMiddleware(s.UpdateUserStatusHandler(), admin...))
	s.RegisterRouteFunc("PATCH "+RouteUserRole, ChainMiddleware(s.UpdateUserRoleHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteUserActivityLogs, ChainMiddleware(s.ActivityLogsHandler(), admin...))

	// SETTINGS (admin only)
	s.RegisterRouteFunc("GET "+RouteSettingsGeneral, ChainMiddleware(s.GetGeneralSettingsHandler(), admin...))
	s.RegisterRouteFunc("PUT "+RouteSettingsGeneral, ChainMiddleware(s.UpdateGeneralSettingsHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteSettingsEmail, ChainMiddleware(s.GetEmailSettingsHandler(), admin...))
	s.RegisterRouteFunc("PUT "+RouteSettingsEmail, ChainMiddleware(s.UpdateEmailSettingsHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteSettingsPaymentGateways, ChainMiddleware(s.GetPaymentGatewaysHandler(), admin...))
	s.RegisterRouteFunc("PUT "+RouteSettingsPaymentGateways, ChainMiddleware(s.UpdatePaymentGatewaysHandler(), admin...))
	s.RegisterRouteFunc("POST "+RouteSettingsGatewayTest, ChainMiddleware(s.TestPaymentGatewayHandler(), admin...))
}
