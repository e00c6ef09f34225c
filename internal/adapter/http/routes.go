package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pocketcredit-backend/internal/adapter/middleware"
	"pocketcredit-backend/internal/usecase/applicant"
	"pocketcredit-backend/internal/usecase/dashboard"
	"pocketcredit-backend/internal/usecase/loan"
	"pocketcredit-backend/internal/usecase/verification"
)

type Deps struct {
	Loans        *loan.Usecase
	Applicants   *applicant.Usecase
	Dashboard    *dashboard.Usecase
	Verification *verification.Usecase

	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Metrics        http.Handler
	Log            *zap.Logger
}

// RegisterRoutes mounts every route. All but /health and /metrics require X-User-Id;
// mutating routes additionally go through the idempotency guard.
func RegisterRoutes(e *echo.Echo, d Deps) {
	h := NewHandler()
	e.GET("/health", h.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	lh := NewLoanHandler(d.Loans, d.Log)
	ah := NewAdminHandler(d.Loans, d.Applicants, d.Log)
	ph := NewProfileHandler(d.Applicants, d.Log)
	dh := NewDashboardHandler(d.Dashboard, d.Log)
	vh := NewVerificationHandler(d.Verification, d.Log)

	g := e.Group("", middleware.RequireUser(), middleware.Idempotency(d.Redis, d.IdempotencyTTL, d.Log))

	g.POST("/loans/eligibility", lh.Eligibility)
	g.GET("/loans/offers", lh.Offers)
	g.POST("/loans", lh.Submit)
	g.GET("/loans", lh.List)
	g.GET("/loans/:loan_id", lh.Get)
	g.GET("/loans/:loan_id/timeline", lh.Timeline)
	g.GET("/loans/:loan_id/schedule", lh.Schedule)
	g.GET("/loans/:loan_id/preclosure", lh.PreclosureQuote)
	g.POST("/loans/:loan_id/preclose", lh.Preclose)
	g.POST("/loans/:loan_id/payments", lh.Pay)
	g.POST("/loans/:loan_id/cancel", lh.Cancel)
	g.GET("/transactions", lh.Transactions)

	g.GET("/profile", ph.Get)
	g.PUT("/profile", ph.Update)
	g.POST("/documents", ph.SubmitDocument)
	g.GET("/documents", ph.ListDocuments)

	g.GET("/dashboard", dh.Summary)
	g.GET("/dashboard/payment-calendar", dh.PaymentCalendar)
	g.GET("/dashboard/credit-score", dh.CreditScore)

	g.POST("/verification/credit", vh.Credit)
	g.POST("/verification/identity", vh.Identity)
	g.POST("/verification/bank", vh.Bank)
	g.GET("/verification/status", vh.Status)

	// X-User-Id on admin routes identifies the operator
	admin := g.Group("/admin")
	admin.POST("/loans/:loan_id/review", ah.StartReview)
	admin.POST("/loans/:loan_id/approve", ah.Approve)
	admin.POST("/loans/:loan_id/reject", ah.Reject)
	admin.POST("/loans/:loan_id/disburse", ah.Disburse)
	admin.POST("/loans/:loan_id/activate", ah.Activate)
	admin.POST("/loans/:loan_id/default", ah.MarkDefaulted)
	admin.POST("/documents/:document_id/review", ah.ReviewDocument)
	admin.PUT("/applicants/:user_id/tier", ah.SetTier)
}
