package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	m "testament.dev/pkg/testament/internal/model"
)

func trxDocument(results string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<TestRun xmlns="http://microsoft.com/schemas/VisualStudio/TeamTest/2010">
  <Results>` + results + `</Results>
</TestRun>`
}

func TestParseReport_Outcomes(t *testing.T) {
	doc := trxDocument(`
    <UnitTestResult testName="NS.Class.Passes" outcome="Passed" duration="00:00:01.2500000" />
    <UnitTestResult testName="NS.Class.Fails" outcome="Failed" duration="00:00:00.1000000" />
    <UnitTestResult testName="NS.Class.Skips" outcome="NotExecuted" duration="00:00:00" />
`)

	records, err := ParseReport(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, m.OutcomePassed, records[0].Outcome)
	require.Equal(t, int64(1250), records[0].DurationMS)

	require.Equal(t, m.OutcomeFailed, records[1].Outcome)
	require.Equal(t, int64(100), records[1].DurationMS)

	require.Equal(t, m.OutcomeSkipped, records[2].Outcome)
}

func TestParseReport_MissingOutcomeIsSkipped(t *testing.T) {
	doc := trxDocument(`<UnitTestResult testName="NS.Class.NoOutcome" duration="00:00:00" />`)

	records, err := ParseReport(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, m.OutcomeSkipped, records[0].Outcome)
}

func TestParseReport_MissingTestNameDropped(t *testing.T) {
	doc := trxDocument(`
    <UnitTestResult outcome="Passed" duration="00:00:01" />
    <UnitTestResult testName="NS.Class.Kept" outcome="Passed" duration="00:00:01" />
`)

	records, err := ParseReport(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "NS.Class.Kept", records[0].TestName)
}

func TestParseReport_ErrorInfoJoined(t *testing.T) {
	doc := trxDocument(`
    <UnitTestResult testName="NS.Class.Fails" outcome="Failed" duration="00:00:00.0100000">
      <Output>
        <ErrorInfo>
          <Message>Assert.Equal() Failure</Message>
          <StackTrace>  at NS.Class.Fails() in Class.cs:line 10  </StackTrace>
        </ErrorInfo>
      </Output>
    </UnitTestResult>
`)

	records, err := ParseReport(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t,
		"Assert.Equal() Failure\n\nat NS.Class.Fails() in Class.cs:line 10",
		records[0].ErrorDetail)
}

func TestParseReport_ErrorInfoMessageOnly(t *testing.T) {
	doc := trxDocument(`
    <UnitTestResult testName="NS.Class.Fails" outcome="Failed" duration="00:00:00">
      <Output><ErrorInfo><Message>boom</Message></ErrorInfo></Output>
    </UnitTestResult>
`)

	records, err := ParseReport(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "boom", records[0].ErrorDetail)
}

func TestParseReport_MalformedDocument(t *testing.T) {
	_, err := ParseReport(strings.NewReader("<TestRun><Results>"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed test report")
}

func TestParseReport_EmptyResults(t *testing.T) {
	records, err := ParseReport(strings.NewReader(trxDocument("")))
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestParseDuration(t *testing.T) {
	require.Equal(t, int64(5445123), parseDuration("01:30:45.1230000"))
	require.Equal(t, int64(500), parseDuration("00:00:00.5000000"))
	require.Equal(t, int64(500), parseDuration("00:00:00.5"))
	require.Equal(t, int64(90000), parseDuration("00:01:30"))
	require.Equal(t, int64(0), parseDuration(""))
	require.Equal(t, int64(0), parseDuration("garbage"))
	require.Equal(t, int64(0), parseDuration("00:00"))
}
