package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/spendfolio/backend/src/config"
	"github.com/username/spendfolio/backend/src/logger"
)

const csrfCookieName = "_csrf_token"

// GetCSRFToken issues a double-submit CSRF token. The cookie carries the token
// plus an HMAC signature so the server can verify it minted the pair.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := generateRandomToken()

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    signCSRFToken(token, config.Cfg.CSRFAuthKey),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		MaxAge:   3600,
	})

	setCORSHeaders(w, r.Header.Get("Origin"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-CSRF-Token", token)

	json.NewEncoder(w).Encode(map[string]string{
		"csrfToken": token,
	})
}

func generateRandomToken() string {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		logger.L.Error("Failed to generate random bytes for CSRF token", "error", err)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func signCSRFToken(token string, authKey []byte) string {
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(token))
	return token + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validCSRFCookie(cookieValue, headerToken string, authKey []byte) bool {
	token, _, found := strings.Cut(cookieValue, ".")
	if !found || token != headerToken {
		return false
	}
	return hmac.Equal([]byte(cookieValue), []byte(signCSRFToken(token, authKey)))
}

func setCORSHeaders(w http.ResponseWriter, origin string) {
	if origin != config.Cfg.FrontendBaseURL {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
	w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token")
}

// CSRFMiddleware validates the X-CSRF-Token header against the signed CSRF
// cookie for state-changing requests.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				setCORSHeaders(w, r.Header.Get("Origin"))
				w.WriteHeader(http.StatusOK)
				return
			}

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)

			if headerToken != "" && err == nil && validCSRFCookie(cookie.Value, headerToken, authKey) {
				next.ServeHTTP(w, r)
				return
			}

			logger.L.Warn("CSRF token validation failed",
				"method", r.Method, "path", r.URL.Path, "origin", r.Header.Get("Origin"))
			setCORSHeaders(w, r.Header.Get("Origin"))
			http.Error(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
