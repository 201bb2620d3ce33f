package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/http/handlers"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/http/middleware"
)

func NewRouter(l *slog.Logger, adminTokenHash string, ph *handlers.ProductsHandler, ih *handlers.ImagesHandler) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(l),
		middleware.Recovery(l),
		middleware.ErrorHandler(l),
	)

	api := r.Group("/admin/api", middleware.RequireAdmin(adminTokenHash))

	api.GET("/products", ph.List)
	api.GET("/products/:id", ph.Get)
	api.PUT("/products/:id/draft", ph.SaveDraft)
	api.GET("/products/:id/draft", ph.GetDraft)

	api.POST("/products/:id/images/session", ih.OpenSession)
	api.DELETE("/products/:id/images/session", ih.CloseSession)
	api.GET("/products/:id/images", ih.List)
	api.POST("/products/:id/images", ih.Select)
	api.DELETE("/products/:id/images/local/:itemID", ih.RemoveLocal)
	api.POST("/products/:id/images/upload", ih.Upload)
	api.DELETE("/products/:id/images/remote", ih.DeleteRemote)

	return r
}
