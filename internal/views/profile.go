package views

import (
	"context"

	"fintrack/internal/core"
)

// ProfileView prefills the profile form with the stored account details.
type ProfileView struct {
	UserID string
	Values ProfileForm
	Errors map[string]string
}

// BuildProfile fetches the viewer's account record.
func BuildProfile(ctx context.Context, b Backend, sess core.Session) (ProfileView, error) {
	p, err := b.User(ctx, sess.UserID)
	if err != nil {
		return ProfileView{}, err
	}
	return ProfileView{
		UserID: sess.UserID,
		Values: ProfileForm{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Phone:     p.Phone,
			Position:  p.Position,
			Address:   p.Address,
		},
		Errors: map[string]string{},
	}, nil
}
