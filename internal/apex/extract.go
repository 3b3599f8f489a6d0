// internal/apex/extract.go
package apex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ROIMetrics is the structured result read back out of the spreadsheet.
type ROIMetrics struct {
	ROIPercentage int `json:"roi_percentage"`
	PaybackMonths int `json:"payback_months"`
	AnnualSavings int `json:"annual_savings"`
}

var (
	roiJSONRe     = regexp.MustCompile(`\{[^{}]*"roi_percentage"[^{}]*\}`)
	roiPctRe      = regexp.MustCompile(`(?i)roi[_\s]*percentage[:\s]*(\d+)`)
	paybackRe     = regexp.MustCompile(`(?i)payback[_\s]*period[:\s]*(\d+)`)
	savingsRe     = regexp.MustCompile(`(?i)annual[_\s]*savings[:\s]*\$?([\d,]+)`)
	lucidAppURLRe = regexp.MustCompile(`https?://[^\s]*lucid\.app[^\s]*`)
)

// ExtractROIMetrics pulls the three ROI numbers out of the model's final
// response. The model is asked for bare JSON but does not always comply, so a
// regex pass over labeled values backs up the JSON path.
func ExtractROIMetrics(finalResponse string) (*ROIMetrics, error) {
	if finalResponse == "" {
		return nil, fmt.Errorf("empty model response")
	}

	if match := roiJSONRe.FindString(finalResponse); match != "" {
		if metrics, err := parseROIJSON(match); err == nil {
			return metrics, nil
		}
	}

	metrics := &ROIMetrics{}
	found := 0
	if m := roiPctRe.FindStringSubmatch(finalResponse); m != nil {
		metrics.ROIPercentage, _ = strconv.Atoi(m[1])
		found++
	}
	if m := paybackRe.FindStringSubmatch(finalResponse); m != nil {
		metrics.PaybackMonths, _ = strconv.Atoi(m[1])
		found++
	}
	if m := savingsRe.FindStringSubmatch(finalResponse); m != nil {
		metrics.AnnualSavings, _ = strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		found++
	}
	if found == 3 {
		return metrics, nil
	}

	preview := finalResponse
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return nil, fmt.Errorf("could not extract ROI values from response: %s", preview)
}

// parseROIJSON decodes one candidate JSON object. Values arrive as numbers or
// as numeric strings depending on the model's mood.
func parseROIJSON(raw string) (*ROIMetrics, error) {
	var loose map[string]any
	if err := json.UnmarshalFromString(raw, &loose); err != nil {
		return nil, err
	}

	metrics := &ROIMetrics{}
	fields := []struct {
		key string
		dst *int
	}{
		{"roi_percentage", &metrics.ROIPercentage},
		{"payback_months", &metrics.PaybackMonths},
		{"annual_savings", &metrics.AnnualSavings},
	}
	for _, f := range fields {
		v, ok := loose[f.key]
		if !ok || v == nil {
			return nil, fmt.Errorf("missing %s", f.key)
		}
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("bad %s: %w", f.key, err)
		}
		*f.dst = n
	}
	return metrics, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", ""), 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// ExtractDocumentURL finds the shareable Lucidchart link, preferring one
// embedded in the model's final text over the browser's final location.
func ExtractDocumentURL(finalResponse, finalURL string) string {
	if m := lucidAppURLRe.FindString(finalResponse); m != "" {
		return strings.TrimRight(m, `".,)]`)
	}
	return finalURL
}
