package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/api"
	"fintrack/internal/session"
)

// authPage is the shared model for the login, register and forgot
// password pages.
type authPage struct {
	Error   string
	Notice  string
	Email   string
	Expired bool
}

// authErrorMessage maps a client error to what the auth pages show.
func authErrorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, api.ErrNetwork) {
		return "Could not reach the server. Please try again."
	}
	return "Something went wrong. Please try again."
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if session.IsAuthenticated(r.Context(), s.store) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		page := authPage{Expired: r.URL.Query().Get("expired") == "1"}
		if page.Expired {
			page.Notice = "Your session has expired. Please log in again."
		}
		s.render(w, r, "login.html", page)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.render(w, r, "login.html", authPage{Error: "Invalid request"})
			return
		}
		email := strings.TrimSpace(r.Form.Get("email"))
		password := r.Form.Get("password")
		if email == "" || password == "" {
			s.render(w, r, "login.html", authPage{Error: "Email and password are required", Email: email})
			return
		}

		sess, err := s.client.Login(r.Context(), email, password)
		if err != nil {
			slog.WarnContext(r.Context(), "Login failed", "email", email, "error", err)
			s.render(w, r, "login.html", authPage{Error: authErrorMessage(err), Email: email})
			return
		}

		slog.InfoContext(r.Context(), "Login succeeded", "user_id", sess.UserID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "register.html", authPage{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.render(w, r, "register.html", authPage{Error: "Invalid request"})
			return
		}
		req := api.RegisterRequest{
			FirstName:       strings.TrimSpace(r.Form.Get("firstName")),
			LastName:        strings.TrimSpace(r.Form.Get("lastName")),
			Email:           strings.TrimSpace(r.Form.Get("email")),
			Phone:           strings.TrimSpace(r.Form.Get("phone")),
			Position:        strings.TrimSpace(r.Form.Get("position")),
			Address:         strings.TrimSpace(r.Form.Get("address")),
			Password:        r.Form.Get("password"),
			ConfirmPassword: r.Form.Get("confirmPassword"),
		}
		if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
			s.render(w, r, "register.html", authPage{Error: "All required fields must be filled in", Email: req.Email})
			return
		}
		if req.Password != req.ConfirmPassword {
			s.render(w, r, "register.html", authPage{Error: "Passwords do not match", Email: req.Email})
			return
		}

		if err := s.client.Register(r.Context(), req); err != nil {
			slog.WarnContext(r.Context(), "Registration failed", "email", req.Email, "error", err)
			s.render(w, r, "register.html", authPage{Error: authErrorMessage(err), Email: req.Email})
			return
		}

		s.render(w, r, "login.html", authPage{Notice: "Account created. Please log in.", Email: req.Email})
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "forgot.html", authPage{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			s.render(w, r, "forgot.html", authPage{Error: "Invalid request"})
			return
		}
		email := strings.TrimSpace(r.Form.Get("email"))
		newPassword := r.Form.Get("newPassword")
		confirmPassword := r.Form.Get("confirmPassword")
		if email == "" || newPassword == "" {
			s.render(w, r, "forgot.html", authPage{Error: "Email and new password are required", Email: email})
			return
		}
		if newPassword != confirmPassword {
			s.render(w, r, "forgot.html", authPage{Error: "Passwords do not match", Email: email})
			return
		}

		if err := s.client.ForgotPassword(r.Context(), email, newPassword, confirmPassword); err != nil {
			slog.WarnContext(r.Context(), "Password reset failed", "email", email, "error", err)
			s.render(w, r, "forgot.html", authPage{Error: authErrorMessage(err), Email: email})
			return
		}

		s.render(w, r, "login.html", authPage{Notice: "Password updated. Please log in.", Email: email})
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := s.client.Logout(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Logout failed", "error", err)
	}
	s.redirectToLogin(w, r, false)
}
