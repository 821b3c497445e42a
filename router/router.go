package router

import (
	"mercury-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "mercury-api/docs"
)

func NewRouter(authHandler *handler.AuthHandler, userHandler *handler.UserHandler, authMW *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.Handler())

	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/logout",
		authMW.RequireAuth(handler.ErrorHandlingMiddleware(authHandler.Logout)))

	mux.Handle("GET /users/me",
		authMW.RequireAuth(handler.ErrorHandlingMiddleware(userHandler.Me)))
	mux.Handle("GET /users/username/{username}",
		authMW.OptionalAuth(handler.ErrorHandlingMiddleware(userHandler.GetByUsername)))

	return mux
}
