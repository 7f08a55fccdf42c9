package api

import (
	"net/http"

	"github.com/MineVault/MineVault-Backend/api/apistrings"
	basemodels "github.com/MineVault/MineVault-Backend/models"
	"github.com/MineVault/MineVault-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Notifications struct {
	server *Server
}

func (n Notifications) router(server *Server) {
	n.server = server

	serverGroupV1 := server.router.Group("/api/v1/notifications")
	serverGroupV1.GET("", AuthenticatedMiddleware(), n.getNotifications)
}

func (n *Notifications) getNotifications(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	limit, offset := pagination(ctx)
	notifications, err := n.server.notifier.List(ctx, activeUser.UserID, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Notifications Fetched Successfully", notifications))
}
