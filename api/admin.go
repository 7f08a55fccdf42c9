package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/MineVault/MineVault-Backend/api/apistrings"
	basemodels "github.com/MineVault/MineVault-Backend/models"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Admin exposes the operational surface: manual job runs and withdrawal
// settlement.
type Admin struct {
	server *Server
}

func (a Admin) router(server *Server) {
	a.server = server

	serverGroupV1 := server.router.Group("/api/v1/admin", AuthenticatedMiddleware(), AdminMiddleware())
	serverGroupV1.POST("accrual/run", a.runAccrual)
	serverGroupV1.GET("accrual/stats", a.accrualStats)
	serverGroupV1.POST("sweep/run", a.runSweep)
	serverGroupV1.POST("withdrawals/:id/complete", a.completeWithdrawal)
}

func (a *Admin) runAccrual(ctx *gin.Context) {
	request := struct {
		Date string `json:"date"` // YYYY-MM-DD, defaults to today
	}{}
	_ = ctx.ShouldBindJSON(&request)

	date := time.Now().UTC()
	if request.Date != "" {
		parsed, err := time.Parse("2006-01-02", request.Date)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, basemodels.NewError("date must be formatted YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	stats, err := a.server.mining.RunAccrual(ctx, date)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Accrual Run Completed", stats))
}

func (a *Admin) accrualStats(ctx *gin.Context) {
	stats, err := a.server.mining.LastAccrualStats(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}
	if stats == nil {
		ctx.JSON(http.StatusNotFound, basemodels.NewError("no accrual run recorded yet"))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Accrual Stats Fetched Successfully", stats))
}

func (a *Admin) runSweep(ctx *gin.Context) {
	expired, err := a.server.mining.SweepExpired(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Sweep Completed", gin.H{"expired": expired}))
}

func (a *Admin) completeWithdrawal(ctx *gin.Context) {
	request := struct {
		TxHash string `json:"tx_hash" binding:"required"`
	}{}

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionInput))
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionID))
		return
	}

	model, err := a.server.transactions.CompleteWithdrawal(ctx, id, request.TxHash)
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.TransactionNotFound))
		return
	case errors.Is(err, transaction.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, basemodels.NewError(err.Error()))
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Withdrawal Completed Successfully", model))
}
