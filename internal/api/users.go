package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/core"
)

// User fetches the profile for the given user id.
func (c *Client) User(ctx context.Context, id string) (core.Profile, error) {
	var out core.Profile
	err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out)
	return out, err
}

// UpdateUser puts the full profile. On success the locally stored display
// name is refreshed so the shell greeting stays current.
func (c *Client) UpdateUser(ctx context.Context, id string, p core.Profile) (core.Profile, error) {
	var out core.Profile
	if err := c.doJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id), p, &out); err != nil {
		return core.Profile{}, err
	}

	if sess, err := c.store.Current(ctx); err == nil {
		sess.UserName = strings.TrimSpace(p.FirstName + " " + p.LastName)
		sess.UserEmail = p.Email
		if err := c.store.Save(ctx, sess); err != nil {
			slog.WarnContext(ctx, "Failed to refresh cached display name", "error", err)
		}
	}
	return out, nil
}
