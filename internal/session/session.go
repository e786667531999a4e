package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName carries the anonymous owner token between visits.
const CookieName = "shop_basket"

// Session is the resolved shopper identity handed to the checkout
// workflow. The workflow itself never reads or mints cookies.
type Session struct {
	BuyerID   string
	Anonymous bool
}

// Resolve picks the owner key for a request: the authenticated user name
// when the upstream gateway set one, otherwise the anonymous basket cookie,
// minting a fresh token with a 10-year expiry when neither exists.
func Resolve(w http.ResponseWriter, r *http.Request) Session {
	if name := r.Header.Get("X-User"); name != "" {
		return Session{BuyerID: name}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return Session{BuyerID: c.Value, Anonymous: true}
	}

	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().AddDate(10, 0, 0),
		HttpOnly: true,
	})
	return Session{BuyerID: token, Anonymous: true}
}
