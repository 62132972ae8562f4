package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loanmate-platform/loanmate-api/internal/service"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

type EligibilityHandler struct {
	eligibility *service.EligibilityService
}

func RegisterEligibility(e *echo.Echo, eligibility *service.EligibilityService) {
	handler := &EligibilityHandler{eligibility: eligibility}
	e.POST("/api/eligibility/check", handler.check)
}

type eligibilityRequest struct {
	LoanType           string  `json:"loanType"`
	Phone              string  `json:"phone"`
	PAN                string  `json:"pan"`
	Aadhar             string  `json:"aadhar"`
	Age                int     `json:"age"`
	Income             float64 `json:"income"`
	CreditScore        int     `json:"creditScore"`
	EmploymentType     string  `json:"employmentType"`
	EmploymentDuration float64 `json:"employmentDuration"`
	ExistingLoans      int     `json:"existingLoans"`
	LoanAmount         float64 `json:"loanAmount"`
}

func (h *EligibilityHandler) check(c echo.Context) error {
	var req eligibilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	in := service.EligibilityInput{
		LoanType:           req.LoanType,
		Phone:              req.Phone,
		PAN:                req.PAN,
		Aadhar:             req.Aadhar,
		Age:                req.Age,
		MonthlyIncome:      req.Income,
		CreditScore:        req.CreditScore,
		EmploymentType:     req.EmploymentType,
		EmploymentDuration: req.EmploymentDuration,
		ExistingLoans:      req.ExistingLoans,
		LoanAmount:         req.LoanAmount,
	}

	if err := h.eligibility.Validate(in); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
	}

	result := h.eligibility.Check(in)
	return c.JSON(http.StatusOK, util.OK("").With("result", result))
}
