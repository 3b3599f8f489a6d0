// internal/apex/instructions.go
package apex

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildDiagramInstructions renders the step-by-step task text for creating a
// Lucidchart architecture diagram. The credentials end up verbatim in the
// model conversation, which is why they are looked up by the caller and never
// logged here.
func BuildDiagramInstructions(req *DiagramRequest, creds LucidchartCredentials) string {
	productsText := "no products"
	if len(req.Products) > 0 {
		productsText = strings.Join(req.Products, ", ")
	}

	return fmt.Sprintf(`Create a Lucidchart architecture diagram for %[1]s.

Step-by-step instructions:

1. Navigate to https://lucid.co and wait for the page to load.

2. Find and click the "Sign In" or "Log In" button. Enter the following credentials:
   - Email: %[2]s
   - Password: %[3]s
   Click the login/submit button to sign in.

3. After logging in, create a new blank diagram:
   - Look for a "Create" button or "+ New" button
   - Select "Blank Diagram" or "New Document"
   - Wait for the diagram editor to load

4. For each of the following products, add their official logo/icon to the canvas:
   %[4]s

   For each product:
   - Use the shape library search (usually in a sidebar or toolbar)
   - Search for the product name (e.g., "Salesforce", "MuleSoft", "Tableau")
   - Find and select the official logo/icon for that product
   - Drag it onto the canvas
   - Position it in a logical architecture layout (arrange components horizontally or in a flow)

5. Add connector arrows between the components to show data flow and integrations:
   - Use the connector/arrow tool from the toolbar
   - Draw arrows connecting related components
   - Make sure the connections show logical data flow

6. Add labels to the connectors or near components to describe integrations:
   - Add labels like "Real-time CDC", "Einstein Analytics Feed", "API Integration", etc.
   - Use text boxes or label tools to add these descriptions
   - Position labels near the relevant connectors or components

7. Set the diagram title to "%[1]s Architecture":
   - Find the title field (usually at the top of the document)
   - Replace any existing title with "%[1]s Architecture"

8. Get the shareable link:
   - Look for a "Share" button or icon
   - Click it and ensure the document is shareable
   - Copy the shareable link URL
   - The URL should look like: https://lucid.app/documents/view/...

9. In your final response, report the shareable link URL clearly. Format it as: "Lucidchart URL: [the full URL]"

Make sure the diagram is well-organized and professional-looking.`,
		req.CompanyName, creds.Email, creds.Password, productsText)
}

// formatAmount renders a dollar figure without scientific notation.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildROIInstructions renders the task text for populating a Google Sheets
// ROI calculator and reading back the computed values.
func BuildROIInstructions(req *ROIRequest) string {
	return fmt.Sprintf(`Populate a Google Sheets ROI calculator and extract the calculated values.

Step-by-step instructions:

1. Navigate to the Google Sheets URL: %[1]s
   Wait for the sheet to fully load. The Inputs tab is already open (it's the first tab).

2. Locate and fill in the following cells in the Inputs tab:
   - Find the cell for "Company Name" (or similar label) and type: %[2]s
   - Find the cell for "Total Initial Investment Cost" (or similar label like "Initial Investment", "Investment Cost", "Total Investment") and type: %[3]s
   - Find the cell for "Average Annual Cash Flow/Savings" (or similar label like "Annual Cash Flow", "Average Annual Savings", "Annual Savings") and type: %[4]s
   - Find the cell for "Customer Annual Profit" or "Annual Profit" (or similar label) and type: %[5]s

   Make sure to click on each cell before typing, and press Enter or Tab after entering each value.

3. Navigate to the "Calculations" tab (or "Results" or "Output" tab):
   - Click on the tab at the bottom of the sheet
   - Wait for the formulas to recalculate (this may take a few seconds)

4. Wait for formulas to recalculate:
   - After switching to the Calculations tab, wait at least 5 seconds
   - Scroll through the sheet to ensure all calculations have updated

5. Read the calculated values from the Calculations tab:
   - Find the cell containing the "5-Year ROI" value (usually shown as a percentage like 412%%)
   - Find the cell containing the "Payback Period" value (usually shown in months like 8)
   - Find the cell containing the "Annual Savings" value (usually shown as a dollar amount like $847,000)

6. Extract the numeric values:
   - For ROI: extract just the number (e.g., if it says "412%%", extract 412)
   - For Payback Period: extract just the number of months (e.g., if it says "8 months", extract 8)
   - For Annual Savings: extract just the dollar amount as a number (e.g., if it says "$847,000", extract 847000)

7. In your final response, return the values in this EXACT JSON format (no other text, just the JSON):
{
  "roi_percentage": <number>,
  "payback_months": <number>,
  "annual_savings": <number>
}

For example, if ROI is 412%%, Payback Period is 8 months, and Annual Savings is $847,000, return:
{
  "roi_percentage": 412,
  "payback_months": 8,
  "annual_savings": 847000
}

IMPORTANT: Your final response must contain ONLY valid JSON in this format. Do not include any explanatory text before or after the JSON.`,
		req.ROISheetURL, req.CompanyName,
		formatAmount(req.TotalInitialInvestmentCost),
		formatAmount(req.AverageAnnualCashFlow),
		formatAmount(req.AnnualProfit))
}
