package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteSendAuthCode = "/auth/send-auth-code"
	RouteVerify       = "/auth/verify"
	RouteSignup       = "/auth/signup"
	RouteLogin        = "/auth/login"
	RouteAccessToken  = "/auth/access-token"
	RouteLogout       = "/auth/logout"
)

// gateBypassPaths are matched exactly against the request path, method
// ignored. Requests to these proceed unauthenticated regardless of any
// credential present. The renewal path is here on purpose: its whole job
// is to accept an expired credential.
var gateBypassPaths = map[string]struct{}{
	RouteSendAuthCode: {},
	RouteVerify:       {},
	RouteSignup:       {},
	RouteLogin:        {},
	RouteAccessToken:  {},
}
