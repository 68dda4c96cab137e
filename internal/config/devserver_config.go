package config

import "time"

type DevServerConfig interface {
	GetJWTSecret() string
	GetIssuer() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetRefreshTokenLength() int
	GetRotateRefreshTokens() bool
	GetAdminEmail() string
	GetAdminPassword() string
}

type DevServer struct{}

var _ DevServerConfig = DevServer{}

func (DevServer) GetJWTSecret() string {
	return GetEnv("DEV_JWT_SECRET", "dev-secret-change-me")
}

func (DevServer) GetIssuer() string {
	return GetEnv("DEV_ISSUER", "store-admin-devserver")
}

func (DevServer) GetAccessTokenTTL() time.Duration {
	return GetEnvDuration("DEV_ACCESS_TOKEN_TTL", 15*time.Minute)
}

func (DevServer) GetRefreshTokenTTL() time.Duration {
	return GetEnvDuration("DEV_REFRESH_TOKEN_TTL", 7*24*time.Hour)
}

func (DevServer) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

// GetRotateRefreshTokens issues a new refresh token on every refresh when true
func (DevServer) GetRotateRefreshTokens() bool {
	return GetEnvBool("DEV_ROTATE_REFRESH", false)
}

func (DevServer) GetAdminEmail() string {
	return GetEnv("DEV_ADMIN_EMAIL", "admin@example.com")
}

func (DevServer) GetAdminPassword() string {
	return GetEnv("DEV_ADMIN_PASSWORD", "admin123")
}
