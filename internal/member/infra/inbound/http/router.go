package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterMemberRoutes(r *gin.Engine, handler *MemberHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/v1/members", handler.SearchMembers)
	r.GET("/v2/members", handler.SearchMembersPage)

	members := r.Group("/members")
	{
		members.GET("", handler.ListMembers)
		members.POST("", handler.CreateMember)
		members.GET("/by-username/:username", handler.GetByUsername)
	}
}
