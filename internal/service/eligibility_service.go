package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Loan products the calculator knows about.
const (
	LoanTypeHome      = "Home Loan"
	LoanTypeEducation = "Education Loan"
	LoanTypePersonal  = "Personal Loan"
	LoanTypeCar       = "Car Loan"
)

const defaultCreditScore = 650

var (
	phonePattern  = regexp.MustCompile(`^[0-9]{10}$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadharPattern = regexp.MustCompile(`^[0-9]{12}$`)
)

var (
	ErrPhoneInvalid       = errors.New("phone number must be exactly 10 digits")
	ErrPANInvalid         = errors.New("PAN must be in the format ABCDE1234F")
	ErrAadharInvalid      = errors.New("aadhar number must be exactly 12 digits")
	ErrAgeBelowMinimum    = errors.New("applicant must be at least 18 years old")
	ErrAgeAboveMaximum    = errors.New("applicant must be at most 75 years old")
	ErrIncomeInvalid      = errors.New("monthly income must be greater than zero")
	ErrCreditScoreInvalid = errors.New("credit score must be between 300 and 900")
)

// EligibilityInput is the loan-check form payload. CreditScore of zero means
// "not provided" and falls back to an average score.
type EligibilityInput struct {
	LoanType           string
	Phone              string
	PAN                string
	Aadhar             string
	Age                int
	MonthlyIncome      float64
	CreditScore        int
	EmploymentType     string
	EmploymentDuration float64
	ExistingLoans      int
	LoanAmount         float64
}

type EligibilityResult struct {
	Eligible              bool     `json:"eligible"`
	MaxEligibleAmount     float64  `json:"max_eligible_amount"`
	SuggestedInterestRate float64  `json:"suggested_interest_rate"`
	Reasons               []string `json:"reasons"`
	Recommendations       []string `json:"recommendations"`
}

// EligibilityService scores loan applications with the fixed rule table the
// product team ships. No persistence, no external calls.
type EligibilityService struct{}

func NewEligibilityService() *EligibilityService {
	return &EligibilityService{}
}

// Validate checks the identity and financial fields before scoring.
func (s *EligibilityService) Validate(in EligibilityInput) error {
	if !phonePattern.MatchString(in.Phone) {
		return ErrPhoneInvalid
	}
	if !panPattern.MatchString(strings.ToUpper(in.PAN)) {
		return ErrPANInvalid
	}
	if !aadharPattern.MatchString(in.Aadhar) {
		return ErrAadharInvalid
	}
	if in.Age < 18 {
		return ErrAgeBelowMinimum
	}
	if in.Age > 75 {
		return ErrAgeAboveMaximum
	}
	if in.MonthlyIncome <= 0 {
		return ErrIncomeInvalid
	}
	if in.CreditScore != 0 && (in.CreditScore < 300 || in.CreditScore > 900) {
		return ErrCreditScoreInvalid
	}
	return nil
}

// Check runs the rule table. Callers should Validate first; Check itself
// only decides, it does not reject malformed identities.
func (s *EligibilityService) Check(in EligibilityInput) EligibilityResult {
	creditScore := in.CreditScore
	if creditScore == 0 {
		creditScore = defaultCreditScore
	}

	result := EligibilityResult{
		Reasons:         []string{},
		Recommendations: []string{},
	}

	maxEmiPercentage := 0.5

	switch in.LoanType {
	case LoanTypeHome:
		maxEmiPercentage = 0.6
		result.MaxEligibleAmount = in.MonthlyIncome * 5
		result.SuggestedInterestRate = 7.5
		if creditScore < 750 {
			result.SuggestedInterestRate += 1
		}
		if in.Age > 45 {
			result.MaxEligibleAmount *= 0.8
			result.Recommendations = append(result.Recommendations, "Since you're over 45, consider a shorter loan tenure")
		}
		if creditScore < 650 {
			result.Reasons = append(result.Reasons, "Low credit score limits home loan approval chances")
			result.SuggestedInterestRate += 1
		}

	case LoanTypeEducation:
		maxEmiPercentage = 0.45
		result.MaxEligibleAmount = in.MonthlyIncome * 2
		result.SuggestedInterestRate = 8.5
		if creditScore < 700 {
			result.SuggestedInterestRate += 1
		}
		if in.EmploymentType != "Salaried" {
			result.Recommendations = append(result.Recommendations, "Education loans generally require a co-applicant for non-salaried individuals")
		}

	case LoanTypePersonal:
		maxEmiPercentage = 0.4
		result.MaxEligibleAmount = in.MonthlyIncome * 1.5
		result.SuggestedInterestRate = 10.5
		if creditScore < 700 {
			result.SuggestedInterestRate += 2
			result.Reasons = append(result.Reasons, "Personal loans typically require a good credit score")
			result.SuggestedInterestRate += 1.5
		}
		if in.EmploymentDuration < 1 {
			result.Reasons = append(result.Reasons, "Less than 1 year of employment may affect personal loan approval")
		}

	case LoanTypeCar:
		maxEmiPercentage = 0.5
		result.MaxEligibleAmount = in.MonthlyIncome * 2.5
		result.SuggestedInterestRate = 9.0
		if creditScore < 700 {
			result.SuggestedInterestRate += 1.5
		}
		if in.ExistingLoans > 2 {
			result.Reasons = append(result.Reasons, "Multiple existing loans may affect car loan approval")
			result.Recommendations = append(result.Recommendations, "Consider settling some existing loans before applying")
		}

	default:
		result.Reasons = append(result.Reasons, "Please select a valid loan type")
		return result
	}

	exceedsReason := ""
	if in.LoanAmount > result.MaxEligibleAmount {
		exceedsReason = fmt.Sprintf("Requested amount exceeds your estimated eligibility of ₹%s", formatAmount(result.MaxEligibleAmount))
		result.Reasons = append(result.Reasons, exceedsReason)
		result.Recommendations = append(result.Recommendations, "Consider applying for a lower loan amount")
	}

	if in.ExistingLoans > 0 {
		remaining := 1 - float64(in.ExistingLoans)*0.15
		if remaining < maxEmiPercentage {
			maxEmiPercentage = remaining
			result.Reasons = append(result.Reasons, "Existing loan obligations reduce your eligibility")
		}
	}

	if creditScore < 600 {
		result.Reasons = append(result.Reasons, "Credit score below 600 significantly affects loan approval chances")
	} else if creditScore >= 750 {
		result.Recommendations = append(result.Recommendations, "Your excellent credit score may qualify you for preferential interest rates")
		result.SuggestedInterestRate -= 0.5
	}

	if len(result.Reasons) <= 1 && creditScore >= 600 {
		result.Eligible = true
		// A lone over-limit reason still disqualifies.
		if len(result.Reasons) == 1 && result.Reasons[0] == exceedsReason {
			result.Eligible = false
		}
	}

	if result.SuggestedInterestRate < 7 {
		result.SuggestedInterestRate = 7
	}
	if result.SuggestedInterestRate > 18 {
		result.SuggestedInterestRate = 18
	}

	return result
}

// formatAmount renders a rupee amount with comma grouping, mirroring how the
// web form displayed the limit.
func formatAmount(amount float64) string {
	digits := strconv.FormatInt(int64(amount), 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var out strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		out.WriteString(digits[:lead])
		if len(digits) > lead {
			out.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		out.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			out.WriteByte(',')
		}
	}
	if negative {
		return "-" + out.String()
	}
	return out.String()
}
