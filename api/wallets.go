package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MineVault/MineVault-Backend/api/apistrings"
	basemodels "github.com/MineVault/MineVault-Backend/models"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/MineVault/MineVault-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Wallets struct {
	server *Server
}

func (w Wallets) router(server *Server) {
	w.server = server

	serverGroupV1 := server.router.Group("/api/v1/wallets")
	serverGroupV1.GET("", AuthenticatedMiddleware(), w.getUserWallets)
	serverGroupV1.POST("", AuthenticatedMiddleware(), w.createWallet)
	serverGroupV1.GET(":currency", AuthenticatedMiddleware(), w.getWallet)
}

func (w *Wallets) getUserWallets(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	wallets, err := w.server.wallets.ListWallets(ctx, activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("User Wallets Fetched Successfully", wallets))
}

func (w *Wallets) createWallet(ctx *gin.Context) {
	request := struct {
		Currency string `json:"currency" binding:"required"`
	}{}

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	model, err := w.server.wallets.GetOrCreate(ctx, activeUser.UserID, request.Currency)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Wallet Ready", model))
}

func (w *Wallets) getWallet(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	model, err := w.server.wallets.GetWallet(ctx, activeUser.UserID, ctx.Param("currency"))
	if errors.Is(err, wallet.ErrWalletNotFound) {
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.UserNoWallet))
		return
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Wallet Fetched Successfully", model))
}

// pagination reads limit/offset query params with sane caps.
func pagination(ctx *gin.Context) (int32, int32) {
	limit, err := strconv.ParseInt(ctx.DefaultQuery("limit", "50"), 10, 32)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, err := strconv.ParseInt(ctx.DefaultQuery("offset", "0"), 10, 32)
	if err != nil || offset < 0 {
		offset = 0
	}
	return int32(limit), int32(offset)
}
