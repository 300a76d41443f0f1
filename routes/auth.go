package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/DannyP4/ecommerce-funiro/auth"
)

func SetupAuthRoutes(r *gin.Engine, d Deps) {
	group := r.Group("/auth")
	{
		group.POST("/register", auth.RegisterHandler(d.DB, d.Cfg.JWTSecret))
		group.POST("/login", auth.LoginHandler(d.DB, d.Cfg.JWTSecret))
	}
}
