package apex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDiagramInstructions(t *testing.T) {
	req := &DiagramRequest{
		OpportunityID: "006abc",
		CompanyName:   "Acme Financial Services",
		Industry:      "Financial Services",
		Products:      []string{"Sales Cloud", "MuleSoft", "Tableau"},
	}
	creds := LucidchartCredentials{Email: "agent@example.com", Password: "hunter2"}

	text := BuildDiagramInstructions(req, creds)

	assert.Contains(t, text, "Acme Financial Services Architecture")
	assert.Contains(t, text, "Sales Cloud, MuleSoft, Tableau")
	assert.Contains(t, text, "agent@example.com")
	assert.Contains(t, text, "hunter2")
	assert.Contains(t, text, "https://lucid.co")
	assert.Contains(t, text, "Lucidchart URL:")
}

func TestBuildDiagramInstructionsNoProducts(t *testing.T) {
	req := &DiagramRequest{CompanyName: "Acme"}
	text := BuildDiagramInstructions(req, LucidchartCredentials{Email: "a@b.c", Password: "p"})
	assert.Contains(t, text, "no products")
}

func TestBuildROIInstructions(t *testing.T) {
	req := &ROIRequest{
		OpportunityID:              "006abc",
		CompanyName:                "Acme Corp",
		TotalInitialInvestmentCost: 500000,
		AverageAnnualCashFlow:      200000,
		AnnualProfit:               50000000,
		ROISheetURL:                "https://docs.google.com/spreadsheets/d/TEMPLATE_ID",
	}

	text := BuildROIInstructions(req)

	assert.Contains(t, text, "https://docs.google.com/spreadsheets/d/TEMPLATE_ID")
	assert.Contains(t, text, "Acme Corp")
	assert.Contains(t, text, "500000")
	assert.Contains(t, text, "200000")
	assert.Contains(t, text, "50000000", "large amounts render without scientific notation")
	assert.Contains(t, text, `"roi_percentage": <number>`)
	// Formatting verbs must not leak into the rendered text.
	assert.NotContains(t, text, "%!")
	assert.Equal(t, 2, strings.Count(text, `"payback_months"`))
}

func TestDiagramRequestValidate(t *testing.T) {
	err := (&DiagramRequest{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opportunity_id")
	assert.Contains(t, err.Error(), "company_name")
	assert.Contains(t, err.Error(), "products")

	ok := &DiagramRequest{OpportunityID: "1", CompanyName: "A", Products: []string{"X"}}
	assert.NoError(t, ok.Validate())
}

func TestROIRequestValidate(t *testing.T) {
	base := func() *ROIRequest {
		return &ROIRequest{
			OpportunityID:              "1",
			CompanyName:                "A",
			TotalInitialInvestmentCost: 100,
			AverageAnnualCashFlow:      50,
			ROISheetURL:                "https://docs.google.com/spreadsheets/d/x",
		}
	}

	assert.NoError(t, base().Validate())

	missing := base()
	missing.ROISheetURL = ""
	assert.ErrorContains(t, missing.Validate(), "roi_sheet_url")

	zeroFlow := base()
	zeroFlow.AverageAnnualCashFlow = 0
	assert.Error(t, zeroFlow.Validate())

	negativeProfit := base()
	negativeProfit.AnnualProfit = -1
	assert.Error(t, negativeProfit.Validate())
}
