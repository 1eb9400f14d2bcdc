package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "swarmdon_session"
	LinkCookieName    = "swarmdon_link"

	sessionMaxAge = 7 * 24 * time.Hour
	linkMaxAge    = time.Hour
)

// SessionClaims binds a browser session to one linked account.
type SessionClaims struct {
	InstanceURL string `json:"instance_url"`
	MastodonID  string `json:"mastodon_id"`
	jwt.RegisteredClaims
}

// linkClaims carries the instance URL between the home form and the
// Mastodon callback, before any account exists.
type linkClaims struct {
	InstanceURL string `json:"instance_url"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies the cookies used by the linkage flow.
type Sessions struct {
	secret []byte
}

func NewSessions(secret string) *Sessions {
	return &Sessions{secret: []byte(secret)}
}

// SetCookie writes the account session cookie after the Mastodon
// callback succeeds.
func (s *Sessions) SetCookie(c *gin.Context, instanceURL, mastodonID string) error {
	claims := &SessionClaims{
		InstanceURL: instanceURL,
		MastodonID:  mastodonID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionMaxAge)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookieName, token, int(sessionMaxAge.Seconds()), "/", "", true, true)
	return nil
}

// SetLinkCookie remembers which instance the user is linking.
func (s *Sessions) SetLinkCookie(c *gin.Context, instanceURL string) error {
	claims := &linkClaims{
		InstanceURL: instanceURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(linkMaxAge)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	c.SetCookie(LinkCookieName, token, int(linkMaxAge.Seconds()), "/", "", true, true)
	return nil
}

// LinkInstance reads the instance URL back out of the link cookie.
func (s *Sessions) LinkInstance(c *gin.Context) (string, bool) {
	tokenString, err := c.Cookie(LinkCookieName)
	if err != nil {
		return "", false
	}
	claims := &linkClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil || !token.Valid || claims.InstanceURL == "" {
		return "", false
	}
	return claims.InstanceURL, true
}

// RequireSession aborts with 401 unless the request carries a valid
// account session; the account key parts are stored on the context.
func (s *Sessions) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil {
			c.String(http.StatusUnauthorized, "missing session cookie")
			c.Abort()
			return
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
		if err != nil || !token.Valid || claims.InstanceURL == "" || claims.MastodonID == "" {
			c.String(http.StatusUnauthorized, "invalid or expired session")
			c.Abort()
			return
		}

		c.Set("instance_url", claims.InstanceURL)
		c.Set("mastodon_id", claims.MastodonID)
		c.Next()
	}
}

func (s *Sessions) keyFunc(token *jwt.Token) (interface{}, error) {
	return s.secret, nil
}
