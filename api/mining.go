package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MineVault/MineVault-Backend/api/apistrings"
	basemodels "github.com/MineVault/MineVault-Backend/models"
	"github.com/MineVault/MineVault-Backend/services/mining"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/MineVault/MineVault-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Mining struct {
	server *Server
}

func (m Mining) router(server *Server) {
	m.server = server

	serverGroupV1 := server.router.Group("/api/v1/mining")
	serverGroupV1.GET("packages", AuthenticatedMiddleware(), m.listPackages)
	serverGroupV1.POST("purchase", AuthenticatedMiddleware(), m.purchase)
	serverGroupV1.GET("holdings", AuthenticatedMiddleware(), m.listHoldings)
	serverGroupV1.GET("power", AuthenticatedMiddleware(), m.aggregatePower)
	serverGroupV1.DELETE("holdings/:id", AuthenticatedMiddleware(), m.cancelHolding)
}

func (m *Mining) listPackages(ctx *gin.Context) {
	packages, err := m.server.mining.ListPackages(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}
	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Mining Packages Fetched Successfully", packages))
}

func (m *Mining) purchase(ctx *gin.Context) {
	request := struct {
		PackageID int64 `json:"package_id" binding:"required"`
	}{}

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidPurchaseInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	holding, err := m.server.mining.Purchase(ctx, activeUser.UserID, request.PackageID)
	switch {
	case errors.Is(err, mining.ErrPackageNotFound), errors.Is(err, mining.ErrPackageInactive):
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.PackageNotFound))
		return
	case errors.Is(err, wallet.ErrInsufficientFunds), errors.Is(err, wallet.ErrWalletNotFound):
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InsufficientFunds))
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("Mining Package Purchased Successfully", holding))
}

func (m *Mining) listHoldings(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	holdings, err := m.server.mining.ListHoldings(ctx, activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}
	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Mining Holdings Fetched Successfully", holdings))
}

func (m *Mining) aggregatePower(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	power, err := m.server.mining.AggregatePower(ctx, activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}
	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Aggregate Mining Power Fetched Successfully", gin.H{"power": power}))
}

func (m *Mining) cancelHolding(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.HoldingNotFound))
		return
	}

	holding, err := m.server.mining.Cancel(ctx, activeUser.UserID, id, ctx.DefaultQuery("reason", "user request"))
	switch {
	case errors.Is(err, mining.ErrHoldingNotFound), errors.Is(err, mining.ErrNotYours):
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.HoldingNotFound))
		return
	case errors.Is(err, mining.ErrInvalidHoldingState):
		ctx.JSON(http.StatusConflict, basemodels.NewError(err.Error()))
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Mining Holding Cancelled Successfully", holding))
}
