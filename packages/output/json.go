package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sheetspec/sheetspec/packages/core/runner"
	"github.com/sheetspec/sheetspec/packages/coverage"
	"github.com/sheetspec/sheetspec/packages/session"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Tests    []JSONTest  `json:"tests"`
	Files    []JSONFile  `json:"files"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total      int `json:"total"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Assertions int `json:"assertions"`
}

// JSONTest represents a single test result
type JSONTest struct {
	Name       string          `json:"name"`
	File       string          `json:"file"`
	Module     string          `json:"module"`
	Passed     bool            `json:"passed"`
	Skipped    bool            `json:"skipped,omitempty"`
	SkipReason string          `json:"skipReason,omitempty"`
	Duration   float64         `json:"duration"`
	Assertions []JSONAssertion `json:"assertions,omitempty"`
}

// JSONAssertion represents a single assertion verdict
type JSONAssertion struct {
	Label    string `json:"label"`
	Passed   bool   `json:"passed"`
	External bool   `json:"external,omitempty"`
	Failure  string `json:"failure,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Note     string `json:"note,omitempty"`
}

// JSONFile carries the per-suite artifacts: the annotated report stream
// and, when enabled, the selector coverage report.
type JSONFile struct {
	File     string           `json:"file"`
	Module   string           `json:"module"`
	Report   string           `json:"report,omitempty"`
	Coverage *coverage.Report `json:"coverage,omitempty"`
}

// JSONFormatter formats run results as JSON
type JSONFormatter struct {
	writer     io.Writer
	tests      []JSONTest
	files      []JSONFile
	assertions int
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		tests:  make([]JSONTest, 0),
		files:  make([]JSONFile, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		test := JSONTest{
			Name:     r.Name,
			File:     result.File,
			Module:   result.Module,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: float64(r.Duration.Milliseconds()),
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			test.SkipReason = r.SkipReason
		}

		if len(r.Assertions) > 0 {
			test.Assertions = make([]JSONAssertion, len(r.Assertions))
			for i, a := range r.Assertions {
				test.Assertions[i] = JSONAssertion{
					Label:    a.Label,
					Passed:   a.Passed,
					External: a.External,
					Failure:  a.Failure,
					Expected: a.Expected,
					Actual:   a.Actual,
					Note:     a.Note,
				}
			}
		}

		f.tests = append(f.tests, test)
	}

	f.files = append(f.files, JSONFile{
		File:     result.File,
		Module:   result.Module,
		Report:   result.Report,
		Coverage: result.Coverage,
	})
	f.assertions += result.Stats[session.StatAssertions]
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors surface through the CLI exit path, not the JSON body
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.tests {
		if t.Skipped {
			skipped++
		} else if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:      len(f.tests),
			Passed:     passed,
			Failed:     failed,
			Skipped:    skipped,
			Assertions: f.assertions,
		},
		Tests:    f.tests,
		Files:    f.files,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
