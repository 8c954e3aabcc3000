package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("POST "+RouteSendAuthCode, ChainMiddleware(s.SendAuthCodeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteVerify, ChainMiddleware(s.VerifyHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAccessToken, ChainMiddleware(s.AccessTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
}
