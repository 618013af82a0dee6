package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterHandlers mounts every route on router.
func (impl *ServerImpl) RegisterHandlers(router gin.IRouter) {
	api := router.Group("/api")
	api.Use(impl.SessionMiddleware(), Authenticate(impl.issuer, impl.config.Admin))

	api.Any("/notify", impl.PostNotify)

	// auth
	api.GET("/auth/sso/:provider/login", impl.GetAuthSsoProviderLogin)
	api.GET("/auth/sso/:provider/callback", impl.GetAuthSsoProviderCallback)
	api.GET("/auth/logout", impl.GetAuthLogout)
	api.GET("/preferences/theme", impl.GetPreferencesTheme)
	api.PUT("/preferences/theme", impl.PutPreferencesTheme)

	// public listings
	api.GET("/listings", impl.GetListings)
	api.GET("/listings/:id", impl.GetListing)
	api.GET("/listings/:id/comments", impl.GetListingComments)
	api.POST("/listings/:id/inquiries", impl.PostListingInquiry)

	user := api.Group("", RequireUser())
	user.GET("/me", impl.GetMe)
	user.GET("/profile", impl.GetProfile)
	user.PATCH("/profile", impl.PatchProfile)
	user.POST("/profile/avatar", impl.PostProfileAvatar)
	user.POST("/images", impl.PostImage)

	user.GET("/items/mine", impl.GetMyItems)
	user.POST("/items/sell", impl.PostSellItem)
	user.POST("/items/pawn", impl.PostPawnItem)
	user.GET("/items/:id", impl.GetItem)
	user.PATCH("/items/:id/contact", impl.PatchItemContact)
	user.POST("/items/:id/sold", impl.PostItemSold)
	user.DELETE("/items/:id", impl.DeleteItem)

	user.POST("/listings/:id/like", impl.PostListingLike)
	user.POST("/listings/:id/comments", impl.PostListingComment)
	user.PATCH("/comments/:id", impl.PatchComment)
	user.DELETE("/comments/:id", impl.DeleteComment)

	admin := api.Group("/admin", RequireAdmin())
	admin.GET("/items", impl.GetAdminItems)
	admin.GET("/items/events", impl.GetAdminItemEvents)
	admin.POST("/items/:id/approve", impl.PostAdminItemApprove)
	admin.POST("/items/:id/reject", impl.PostAdminItemReject)
	admin.POST("/items/:id/sold", impl.PostItemSold)
	admin.POST("/items/:id/pawned", impl.PostAdminItemPawned)
	admin.DELETE("/items/:id", impl.DeleteItem)
	admin.GET("/transactions", impl.GetAdminTransactions)
	admin.POST("/listings", impl.PostAdminListing)
	admin.DELETE("/listings/:id", impl.DeleteAdminListing)
}
