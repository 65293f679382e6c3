package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campushare/campushare/pkg/auth"
)

// userPayload is the user shape returned to clients. The password hash and
// internal fields never leave the server.
type userPayload struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email,omitempty"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	Bio           string `json:"bio"`
	Location      string `json:"location"`
	JoinedOn      string `json:"joinedOn"`
	EmailVerified bool   `json:"emailVerified"`
	AuthStrategy  string `json:"authStrategy"`
}

func toUserPayload(u *auth.User) userPayload {
	return userPayload{
		UserID:        u.ID.String(),
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		Email:         u.Email,
		PhotoURL:      u.PhotoURL,
		Bio:           u.Bio,
		Location:      u.Location,
		JoinedOn:      u.JoinedOn.Format(time.DateOnly),
		EmailVerified: u.EmailVerified,
		AuthStrategy:  u.AuthStrategy,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
