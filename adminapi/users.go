package adminapi

import (
	"context"

	"github.com/jrsteele09/go-store-admin/apiclient"
)

const PathUsers = "/admin/users"

type UsersService struct {
	c *apiclient.Client
}

func (s *UsersService) List(ctx context.Context, params ListParams) (*Page[User], error) {
	var page Page[User]
	if err := s.c.Get(ctx, PathUsers, params.Query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.c.Get(ctx, resourcePath(PathUsers, id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Create(ctx context.Context, in UserInput) (*User, error) {
	var u User
	if err := s.c.Post(ctx, PathUsers, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Update(ctx context.Context, id string, in UserInput) (*User, error) {
	var u User
	if err := s.c.Put(ctx, resourcePath(PathUsers, id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, resourcePath(PathUsers, id), nil)
}

func (s *UsersService) Stats(ctx context.Context) (*UserStats, error) {
	var stats UserStats
	if err := s.c.Get(ctx, PathUsers+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *UsersService) Roles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := s.c.Get(ctx, PathUsers+"/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *UsersService) UpdateStatus(ctx context.Context, id string, status UserStatus) (*User, error) {
	var u User
	body := map[string]UserStatus{"status": status}
	if err := s.c.Patch(ctx, resourcePath(PathUsers, id, "status"), body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) UpdateRole(ctx context.Context, id string, role Role) (*User, error) {
	var u User
	body := map[string]Role{"role": role}
	if err := s.c.Patch(ctx, resourcePath(PathUsers, id, "role"), body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SendPasswordReset asks the backend to email a reset token to email
func (s *UsersService) SendPasswordReset(ctx context.Context, email string) error {
	return s.c.Post(ctx, PathUsers+"/forgot-password", map[string]string{"email": email}, nil, apiclient.WithoutAuth())
}

// ResetPassword sets a new password with a reset token. Like SendPasswordReset it needs no session.
func (s *UsersService) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return s.c.Post(ctx, PathUsers+"/reset-password", body, nil, apiclient.WithoutAuth())
}

func (s *UsersService) ActivityLogs(ctx context.Context, userID string, params ListParams) (*Page[ActivityLog], error) {
	var page Page[ActivityLog]
	if err := s.c.Get(ctx, resourcePath(PathUsers, userID, "activity-logs"), params.Query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
