package server

import "net/http"

// accessTokenCookieName is the cookie carrying the access token. This
// deployment is cookie-based; there is no Authorization header fallback.
const accessTokenCookieName = "accessToken"

func (s *Server) SetAccessTokenCookie(w http.ResponseWriter, r *http.Request, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) ExpireAccessTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// extractAccessToken pulls the raw token out of the request cookie.
// Empty means no credential was presented.
func extractAccessToken(r *http.Request) string {
	cookie, err := r.Cookie(accessTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
