package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

// StoredRefreshToken is the server-side metadata of an opaque refresh token. The client only receives
// Token.
type StoredRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// RefreshRepo stores refresh token metadata keyed by the token string
type RefreshRepo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	DeleteByUserID(userID string) error
}

// RefreshManager handles refresh token creation, validation, and rotation
type RefreshManager struct {
	repo   RefreshRepo
	config config.DevServerConfig
}

func NewRefreshManager(repo RefreshRepo, cfg config.DevServerConfig) *RefreshManager {
	return &RefreshManager{
		repo:   repo,
		config: cfg,
	}
}

// Create generates a new refresh token for userID and stores it
func (m *RefreshManager) Create(userID string) (string, error) {
	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Validate returns the metadata of a live refresh token. Expired tokens are removed.
func (m *RefreshManager) Validate(token string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return nil, errors.ErrRefreshTokenExpired
	}
	return rt, nil
}

// Rotate replaces rt with a new refresh token for the same user
func (m *RefreshManager) Rotate(rt *StoredRefreshToken) (string, error) {
	if err := m.repo.Delete(rt.Token); err != nil {
		return "", errors.ErrInvalidRefreshToken
	}
	return m.Create(rt.UserID)
}

func (m *RefreshManager) Delete(token string) error {
	return m.repo.Delete(token)
}

// RevokeUser deletes every refresh token of userID
func (m *RefreshManager) RevokeUser(userID string) error {
	return m.repo.DeleteByUserID(userID)
}

func (m *RefreshManager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetRefreshTokenTTL()
}

var _ RefreshRepo = (*MemoryRefreshRepo)(nil)

// MemoryRefreshRepo keeps refresh tokens in memory. A user may hold several, one per login.
type MemoryRefreshRepo struct {
	tokens map[string]*StoredRefreshToken
	lock   sync.RWMutex
}

func NewMemoryRefreshRepo() *MemoryRefreshRepo {
	return &MemoryRefreshRepo{
		tokens: make(map[string]*StoredRefreshToken),
	}
}

func (tr *MemoryRefreshRepo) Upsert(refreshToken *StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[refreshToken.Token] = refreshToken
	return nil
}

func (tr *MemoryRefreshRepo) Delete(token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[token]; !ok {
		return errors.ErrNotFound
	}
	delete(tr.tokens, token)
	return nil
}

func (tr *MemoryRefreshRepo) Get(token string) (*StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[token]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return rt, nil
}

func (tr *MemoryRefreshRepo) DeleteByUserID(userID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	for token, rt := range tr.tokens {
		if rt.UserID == userID {
			delete(tr.tokens, token)
		}
	}
	return nil
}
