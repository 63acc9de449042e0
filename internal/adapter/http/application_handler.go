package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	domainApp "line-of-credit/internal/domain/application"
	ucApp "line-of-credit/internal/usecase/application"
)

type ApplicationHandler struct{ uc *ucApp.Usecase }

func NewApplicationHandler(uc *ucApp.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type createApplicationReq struct {
	UserID          string          `json:"userId"          validate:"required,max=64"`
	RequestedAmount decimal.Decimal `json:"requestedAmount" validate:"posdec,dec2"`
	ExpressDelivery bool            `json:"expressDelivery"`
}

type disburseReq struct {
	ApplicationID string          `json:"applicationId"      validate:"required"`
	Amount        decimal.Decimal `json:"disbursementAmount" validate:"posdec,dec2"`
}

func (disburseReq) validationSummary() string {
	return "applicationId and disbursementAmount (positive number) are required."
}

type repayReq struct {
	ApplicationID string          `json:"applicationId"   validate:"required"`
	Amount        decimal.Decimal `json:"repaymentAmount" validate:"posdec,dec2"`
}

func (repayReq) validationSummary() string {
	return "applicationId and repaymentAmount (positive number) are required."
}

type applicationIDReq struct {
	ApplicationID string `json:"applicationId" validate:"required"`
}

func (applicationIDReq) validationSummary() string { return "applicationId is required." }

type historyReq struct {
	UserID string `json:"userId" validate:"required"`
}

func (historyReq) validationSummary() string { return "userId is required." }

func (h *ApplicationHandler) CreateApplication(c echo.Context) error {
	var req createApplicationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), ucApp.CreateApplicationInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) DisburseFunds(c echo.Context) error {
	var req disburseReq
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.uc.Disburse(c.Request().Context(), ucApp.AmountInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ApplicationHandler) RepayApplication(c echo.Context) error {
	var req repayReq
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.uc.Repay(c.Request().Context(), ucApp.AmountInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ApplicationHandler) CancelApplication(c echo.Context) error {
	var req applicationIDReq
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.uc.Cancel(c.Request().Context(), req.ApplicationID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// RejectApplication is admin-only, signalled by ?isAdmin=true. Non-admins get 403
// before the body is looked at.
func (h *ApplicationHandler) RejectApplication(c echo.Context) error {
	if c.QueryParam("isAdmin") != "true" {
		return domainApp.ErrUnauthorized
	}
	var req applicationIDReq
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.uc.Reject(c.Request().Context(), ucApp.RejectInput{ApplicationID: req.ApplicationID, IsAdmin: true})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// ViewApplicationHistory answers 200 with a message, not an empty list, when the user has nothing.
func (h *ApplicationHandler) ViewApplicationHistory(c echo.Context) error {
	var req historyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	hist, err := h.uc.History(c.Request().Context(), req.UserID)
	if err != nil {
		return err
	}
	if len(hist) == 0 {
		return c.JSON(http.StatusOK, ucApp.MessageDTO{Message: ucApp.MsgNoApplications})
	}
	return c.JSON(http.StatusOK, hist)
}
