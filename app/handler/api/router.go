package handler

import (
	"labstock-service/app/middleware"
	"labstock-service/config"

	"github.com/gofiber/fiber/v2"
)

func SetupRouter(
	app *fiber.App,
	transactionHandler *TransactionHandler,
	balanceHandler *BalanceHandler,
	procedureHandler *ProcedureHandler,
	cfg *config.Config) {

	api := app.Group("/labstock-service").Use(middleware.Auth(cfg.Jwt.SecretKey))

	api.Post("/laboratories/:laboratory_id/procedures/:procedure_id/withdraw", transactionHandler.Withdraw)
	api.Get("/laboratories/:laboratory_id/balance", balanceHandler.GetLaboratoryBalance)
	api.Get("/laboratories/:laboratory_id/procedures", procedureHandler.GetByLaboratory)
	api.Get("/procedures/:procedure_id/materials", procedureHandler.GetProcedureMaterials)
	api.Get("/transactions", transactionHandler.GetListTransactions)

	internal := app.Group("/internal/labstock-service").
		Use(middleware.AuthInternal(cfg)).
		Use(middleware.UserFromHeader())
	internal.Post("/balances/deposit", balanceHandler.Deposit)
	internal.Post("/transactions/:transaction_id/complete", transactionHandler.Complete)
}
