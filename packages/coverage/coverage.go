// Package coverage provides selector coverage reporting for sheetspec.
package coverage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sheetspec/sheetspec/packages/css"
)

// Report represents a selector coverage report for a source stylesheet.
type Report struct {
	TotalSelectors   int              `json:"totalSelectors"`
	CoveredSelectors int              `json:"coveredSelectors"`
	CoveragePercent  float64          `json:"coveragePercent"`
	Selectors        []SelectorStatus `json:"selectors"`
	Uncovered        []string         `json:"uncovered,omitempty"`
}

// SelectorStatus represents the coverage status of a single selector.
type SelectorStatus struct {
	Selector string `json:"selector"`
	Covered  bool   `json:"covered"`
	HitCount int    `json:"hitCount"`
}

// Analyzer analyzes which selectors of a source stylesheet were touched
// by test queries and output expectations.
type Analyzer struct {
	selectors []string
}

// NewAnalyzer creates a new coverage analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		selectors: make([]string, 0),
	}
}

// LoadStylesheet collects the selectors of every rule in the sheet,
// in source order. Duplicate selectors are folded into one entry.
func (a *Analyzer) LoadStylesheet(sheet *css.Stylesheet) {
	seen := make(map[string]bool)
	for _, rule := range sheet.Rules() {
		sel := normalizeSelector(rule.Selector)
		if sel == "" || seen[sel] {
			continue
		}
		seen[sel] = true
		a.selectors = append(a.selectors, sel)
	}
}

// Analyze compares touched selectors against the loaded stylesheet.
func (a *Analyzer) Analyze(touched []string) *Report {
	report := &Report{
		TotalSelectors: len(a.selectors),
		Selectors:      make([]SelectorStatus, 0, len(a.selectors)),
	}

	hits := make(map[string]int)
	for _, sel := range touched {
		hits[normalizeSelector(sel)]++
	}

	for _, sel := range a.selectors {
		count := hits[sel]
		covered := count > 0

		report.Selectors = append(report.Selectors, SelectorStatus{
			Selector: sel,
			Covered:  covered,
			HitCount: count,
		})

		if covered {
			report.CoveredSelectors++
		} else {
			report.Uncovered = append(report.Uncovered, sel)
		}
	}

	if report.TotalSelectors > 0 {
		report.CoveragePercent = float64(report.CoveredSelectors) / float64(report.TotalSelectors) * 100
	}

	return report
}

// normalizeSelector collapses runs of whitespace so that the same
// selector written with different formatting compares equal.
func normalizeSelector(sel string) string {
	return strings.Join(strings.Fields(sel), " ")
}

// FormatConsole formats the report for console output.
func (r *Report) FormatConsole() string {
	var sb strings.Builder

	sb.WriteString("\nSelector Coverage Report\n")
	sb.WriteString("========================\n\n")

	sb.WriteString(fmt.Sprintf("Total Selectors:   %d\n", r.TotalSelectors))
	sb.WriteString(fmt.Sprintf("Covered Selectors: %d\n", r.CoveredSelectors))
	sb.WriteString(fmt.Sprintf("Coverage:          %.1f%%\n\n", r.CoveragePercent))

	sb.WriteString("Selector Details:\n")
	for _, sel := range r.Selectors {
		status := "[ ]"
		if sel.Covered {
			status = "[x]"
		}
		sb.WriteString(fmt.Sprintf("  %s %s", status, sel.Selector))
		if sel.HitCount > 1 {
			sb.WriteString(fmt.Sprintf(" (x%d)", sel.HitCount))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatJSON formats the report as JSON.
func (r *Report) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatHTML formats the report as HTML.
func (r *Report) FormatHTML() string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html>
<head>
  <title>Selector Coverage Report</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 40px; }
    h1 { color: #333; }
    .summary { background: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .summary h2 { margin-top: 0; }
    .coverage-bar { background: #e0e0e0; height: 24px; border-radius: 4px; overflow: hidden; }
    .coverage-fill { background: #4caf50; height: 100%; }
    table { border-collapse: collapse; width: 100%; margin: 20px 0; }
    th, td { text-align: left; padding: 12px; border-bottom: 1px solid #ddd; }
    th { background: #f5f5f5; }
    .covered { color: #4caf50; }
    .uncovered { color: #f44336; }
    code { background: #f5f5f5; padding: 2px 6px; border-radius: 4px; }
  </style>
</head>
<body>
`)

	sb.WriteString("<h1>Selector Coverage Report</h1>\n")

	sb.WriteString("<div class=\"summary\">\n")
	sb.WriteString("<h2>Summary</h2>\n")
	sb.WriteString(fmt.Sprintf("<p><strong>Coverage:</strong> %.1f%% (%d/%d selectors)</p>\n",
		r.CoveragePercent, r.CoveredSelectors, r.TotalSelectors))
	sb.WriteString("<div class=\"coverage-bar\">\n")
	sb.WriteString(fmt.Sprintf("<div class=\"coverage-fill\" style=\"width: %.1f%%\"></div>\n", r.CoveragePercent))
	sb.WriteString("</div>\n")
	sb.WriteString("</div>\n")

	sb.WriteString("<h2>Selectors</h2>\n")
	sb.WriteString("<table>\n")
	sb.WriteString("<tr><th>Status</th><th>Selector</th><th>Hits</th></tr>\n")

	for _, sel := range r.Selectors {
		statusClass := "uncovered"
		statusIcon := "&#x2717;"
		if sel.Covered {
			statusClass = "covered"
			statusIcon = "&#x2713;"
		}

		sb.WriteString("<tr>\n")
		sb.WriteString(fmt.Sprintf("<td class=\"%s\">%s</td>\n", statusClass, statusIcon))
		sb.WriteString(fmt.Sprintf("<td><code>%s</code></td>\n", htmlEscape(sel.Selector)))
		sb.WriteString(fmt.Sprintf("<td>%d</td>\n", sel.HitCount))
		sb.WriteString("</tr>\n")
	}

	sb.WriteString("</table>\n")
	sb.WriteString("</body>\n</html>")

	return sb.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
