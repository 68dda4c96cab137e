package devserver

import (
	"net/http"
	"slices"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/internal/errors"
)

func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.ListUsers(parseListQuery(r)))
	}
}

func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.data.User(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in adminapi.UserInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(in); err != nil {
			writeError(w, err)
			return
		}
		if in.Password == "" {
			writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "password is required"))
			return
		}

		u, err := s.data.AddAccount(in)
		if err != nil {
			writeError(w, err)
			return
		}
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "user_created", u.Email, clientIP(r))
		writeJSON(w, http.StatusCreated, u)
	}
}

func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in adminapi.UserInput
		if err := decodeBody(r, &in); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(in); err != nil {
			writeError(w, err)
			return
		}

		u, err := s.data.UpdateUser(r.PathValue("id"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "user_updated", u.Email, clientIP(r))
		writeJSON(w, http.StatusOK, u)
	}
}

// DeleteUserHandler refuses to delete the caller's own account
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		caller := claimsFromContext(r.Context()).Subject
		if id == caller {
			writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "cannot delete your own account"))
			return
		}
		if err := s.data.DeleteUser(id); err != nil {
			writeError(w, err)
			return
		}
		_ = s.refresh.RevokeUser(id)
		s.data.LogActivity(caller, "user_deleted", id, clientIP(r))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) UpdateUserStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status adminapi.UserStatus `json:"status"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if !slices.Contains(adminapi.UserStatuses, req.Status) {
			writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "unknown status %q", req.Status))
			return
		}

		id := r.PathValue("id")
		u, err := s.data.PatchUser(id, func(u *adminapi.User) { u.Status = req.Status })
		if err != nil {
			writeError(w, err)
			return
		}
		if req.Status != adminapi.UserActive {
			_ = s.refresh.RevokeUser(id)
		}
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "user_status", u.Email+" -> "+string(u.Status), clientIP(r))
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) UpdateUserRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Role adminapi.Role `json:"role"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if !slices.Contains(adminapi.Roles, req.Role) {
			writeError(w, errors.Wrapf(errors.ErrInvalidRequest, "unknown role %q", req.Role))
			return
		}

		u, err := s.data.PatchUser(r.PathValue("id"), func(u *adminapi.User) { u.Role = req.Role })
		if err != nil {
			writeError(w, err)
			return
		}
		s.data.LogActivity(claimsFromContext(r.Context()).Subject, "user_role", u.Email+" -> "+string(u.Role), clientIP(r))
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) UserStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.UserStats())
	}
}

func (s *Server) UserRolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, adminapi.Roles)
	}
}

func (s *Server) ActivityLogsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.data.User(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.data.ActivityLogs(id, parseListQuery(r)))
	}
}
