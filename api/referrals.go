package api

import (
	"net/http"

	"github.com/MineVault/MineVault-Backend/api/apistrings"
	basemodels "github.com/MineVault/MineVault-Backend/models"
	"github.com/MineVault/MineVault-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Referrals struct {
	server *Server
}

func (r Referrals) router(server *Server) {
	r.server = server

	serverGroupV1 := server.router.Group("/api/v1/referrals")
	serverGroupV1.GET("commissions", AuthenticatedMiddleware(), r.getCommissions)
}

func (r *Referrals) getCommissions(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	limit, offset := pagination(ctx)
	commissions, err := r.server.referrals.ListCommissions(ctx, activeUser.UserID, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Referral Commissions Fetched Successfully", commissions))
}
