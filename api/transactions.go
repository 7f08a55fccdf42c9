package api

import (
	"errors"
	"net/http"

	"github.com/MineVault/MineVault-Backend/api/apistrings"
	basemodels "github.com/MineVault/MineVault-Backend/models"
	"github.com/MineVault/MineVault-Backend/services/transaction"
	"github.com/MineVault/MineVault-Backend/services/wallet"
	"github.com/MineVault/MineVault-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transactions struct {
	server *Server
}

func (t Transactions) router(server *Server) {
	t.server = server

	serverGroupV1 := server.router.Group("/api/v1")
	serverGroupV1.GET("transactions", AuthenticatedMiddleware(), t.getTransactions)
	serverGroupV1.GET("transactions/:id", AuthenticatedMiddleware(), t.getTransaction)
	serverGroupV1.POST("withdrawals", AuthenticatedMiddleware(), t.requestWithdrawal)
	serverGroupV1.DELETE("withdrawals/:id", AuthenticatedMiddleware(), t.cancelWithdrawal)

	// Deposit events arrive from the operator's chain watcher, already
	// validated upstream.
	serverGroupV1.POST("deposits", AuthenticatedMiddleware(), AdminMiddleware(), t.recordDeposit)
}

func (t *Transactions) getTransactions(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	limit, offset := pagination(ctx)
	history, err := t.server.transactions.History(ctx, activeUser.UserID, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Transactions Fetched Successfully", history))
}

func (t *Transactions) getTransaction(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionID))
		return
	}

	model, err := t.server.transactions.Get(ctx, id)
	if errors.Is(err, transaction.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.TransactionNotFound))
		return
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}
	if model.UserID != activeUser.UserID {
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.TransactionNotFound))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Transaction Fetched Successfully", model))
}

func (t *Transactions) requestWithdrawal(ctx *gin.Context) {
	request := struct {
		Currency string          `json:"currency" binding:"required"`
		Amount   decimal.Decimal `json:"amount" binding:"required"`
	}{}

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	model, err := t.server.transactions.RequestWithdrawal(ctx, activeUser.UserID, request.Currency, request.Amount)
	switch {
	case errors.Is(err, transaction.ErrBelowMinimum):
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.WithdrawalBelowMinimum))
		return
	case errors.Is(err, transaction.ErrInvalidAmount):
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionInput))
		return
	case errors.Is(err, wallet.ErrInsufficientFunds), errors.Is(err, wallet.ErrWalletNotFound):
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InsufficientFunds))
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("Withdrawal Requested Successfully", model))
}

func (t *Transactions) cancelWithdrawal(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionID))
		return
	}

	model, err := t.server.transactions.CancelWithdrawal(ctx, activeUser.UserID, id)
	switch {
	case errors.Is(err, transaction.ErrNotFound), errors.Is(err, transaction.ErrNotYours):
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.TransactionNotFound))
		return
	case errors.Is(err, transaction.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, basemodels.NewError(err.Error()))
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("Withdrawal Cancelled Successfully", model))
}

func (t *Transactions) recordDeposit(ctx *gin.Context) {
	request := struct {
		UserID   int64           `json:"user_id" binding:"required"`
		Currency string          `json:"currency" binding:"required"`
		Amount   decimal.Decimal `json:"amount" binding:"required"`
		TxHash   string          `json:"tx_hash"`
	}{}

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionInput))
		return
	}

	model, err := t.server.transactions.Deposit(ctx, request.UserID, request.Currency, request.Amount, request.TxHash)
	switch {
	case errors.Is(err, transaction.ErrInvalidAmount):
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTransactionInput))
		return
	case errors.Is(err, transaction.ErrDuplicateEvent):
		ctx.JSON(http.StatusConflict, basemodels.NewError(err.Error()))
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("Deposit Recorded Successfully", model))
}
