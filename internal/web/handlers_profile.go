package web

import (
	"net/http"

	"fintrack/internal/views"
)

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request").Write(w)
		return
	}

	sess := sessionFrom(r.Context())
	form := views.ProfileForm{
		FirstName:       r.Form.Get("firstName"),
		LastName:        r.Form.Get("lastName"),
		Email:           r.Form.Get("email"),
		Phone:           r.Form.Get("phone"),
		Position:        r.Form.Get("position"),
		Address:         r.Form.Get("address"),
		Password:        r.Form.Get("password"),
		ConfirmPassword: r.Form.Get("confirmPassword"),
	}

	profile, fieldErrs := form.Parse()
	if len(fieldErrs) > 0 {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "profile.html", views.ProfileView{
			UserID: sess.UserID,
			Values: form,
			Errors: fieldErrs,
		})
		return
	}

	if _, err := s.client.UpdateUser(r.Context(), sess.UserID, profile); err != nil {
		s.handleAPIError(w, r, err)
		return
	}

	NewHTMXResponse().
		Trigger("profile:updated", struct{}{}).
		TriggerSuccessNotification("Profile updated").
		Write(w)
}
