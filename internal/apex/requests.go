// internal/apex/requests.go
package apex

import (
	"fmt"
	"strings"
)

// DiagramRequest describes a Lucidchart architecture diagram job for one
// opportunity.
type DiagramRequest struct {
	OpportunityID string   `json:"opportunity_id"`
	CompanyName   string   `json:"company_name"`
	Industry      string   `json:"industry,omitempty"`
	Products      []string `json:"products"`
}

// Validate rejects requests before any browser time is spent on them.
func (r *DiagramRequest) Validate() error {
	var missing []string
	if r.OpportunityID == "" {
		missing = append(missing, "opportunity_id")
	}
	if r.CompanyName == "" {
		missing = append(missing, "company_name")
	}
	if len(r.Products) == 0 {
		missing = append(missing, "products")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ROIRequest describes a Google Sheets ROI calculator job.
type ROIRequest struct {
	OpportunityID              string  `json:"opportunity_id"`
	CompanyName                string  `json:"company_name"`
	TotalInitialInvestmentCost float64 `json:"total_initial_investment_cost"`
	AverageAnnualCashFlow      float64 `json:"average_annual_cash_flow"`
	AnnualProfit               float64 `json:"annual_profit,omitempty"`
	EmployeeCount              int     `json:"employee_count,omitempty"`
	ROISheetURL                string  `json:"roi_sheet_url"`
}

func (r *ROIRequest) Validate() error {
	var missing []string
	if r.OpportunityID == "" {
		missing = append(missing, "opportunity_id")
	}
	if r.CompanyName == "" {
		missing = append(missing, "company_name")
	}
	if r.ROISheetURL == "" {
		missing = append(missing, "roi_sheet_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if r.TotalInitialInvestmentCost < 0 || r.AverageAnnualCashFlow <= 0 {
		return fmt.Errorf("total_initial_investment_cost must be >= 0 and average_annual_cash_flow must be > 0")
	}
	if r.AnnualProfit < 0 {
		return fmt.Errorf("annual_profit must be >= 0")
	}
	if r.EmployeeCount < 0 {
		return fmt.Errorf("employee_count must be >= 0")
	}
	return nil
}
