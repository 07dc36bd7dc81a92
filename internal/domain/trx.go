package domain

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	m "testament.dev/pkg/testament/internal/model"
)

type trxReport struct {
	XMLName xml.Name        `xml:"TestRun"`
	Results trxResultsBlock `xml:"Results"`
}

type trxResultsBlock struct {
	Results []trxUnitTestResult `xml:"UnitTestResult"`
}

type trxUnitTestResult struct {
	TestName string     `xml:"testName,attr"`
	Outcome  string     `xml:"outcome,attr"`
	Duration string     `xml:"duration,attr"`
	Output   *trxOutput `xml:"Output"`
}

type trxOutput struct {
	ErrorInfo *trxErrorInfo `xml:"ErrorInfo"`
}

type trxErrorInfo struct {
	Message    string `xml:"Message"`
	StackTrace string `xml:"StackTrace"`
}

// ParseReport reads a TRX test report and returns one outcome record per
// result. Results without a test name are dropped; any outcome other than
// Passed or Failed, including a missing attribute, is treated as skipped.
func ParseReport(r io.Reader) ([]m.OutcomeRecord, error) {
	var report trxReport

	if err := xml.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("malformed test report: %w", err)
	}

	records := make([]m.OutcomeRecord, 0, len(report.Results.Results))

	for _, result := range report.Results.Results {
		if result.TestName == "" {
			continue
		}

		record := m.OutcomeRecord{
			TestName:   result.TestName,
			Outcome:    outcomeFromAttr(result.Outcome),
			DurationMS: parseDuration(result.Duration),
		}

		if result.Output != nil && result.Output.ErrorInfo != nil {
			record.ErrorDetail = joinErrorInfo(
				result.Output.ErrorInfo.Message,
				result.Output.ErrorInfo.StackTrace,
			)
		}

		records = append(records, record)
	}

	return records, nil
}

func outcomeFromAttr(outcome string) m.Outcome {
	switch outcome {
	case "Passed":
		return m.OutcomePassed
	case "Failed":
		return m.OutcomeFailed
	default:
		return m.OutcomeSkipped
	}
}

// parseDuration converts a TRX HH:MM:SS[.fraction] duration to whole
// milliseconds. The fraction is read as exactly three digits, padded or
// truncated without rounding. Anything unparseable yields zero.
func parseDuration(duration string) int64 {
	parts := strings.Split(duration, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0
	}

	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0
	}

	seconds := parts[2]
	fraction := ""

	if dot := strings.IndexByte(seconds, '.'); dot >= 0 {
		fraction = seconds[dot+1:]
		seconds = seconds[:dot]
	}

	wholeSeconds, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return 0
	}

	for len(fraction) < 3 {
		fraction += "0"
	}

	millis, err := strconv.ParseInt(fraction[:3], 10, 64)
	if err != nil {
		return 0
	}

	return (hours*3600+minutes*60+wholeSeconds)*1000 + millis
}

func joinErrorInfo(message, stackTrace string) string {
	message = strings.TrimSpace(message)
	stackTrace = strings.TrimSpace(stackTrace)

	switch {
	case message == "":
		return stackTrace
	case stackTrace == "":
		return message
	default:
		return message + "\n\n" + stackTrace
	}
}
