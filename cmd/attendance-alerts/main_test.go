package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

func TestPrintReportKeepsPartialReportOnError(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	report := &models.SweepReport{
		RunID:     "run-1",
		Evaluated: 2,
		Failures:  []models.DispatchFailure{{MemberID: 5, Tier: models.AlertTierCritical, Error: "mailer unavailable"}},
	}
	err := printReport(cmd, report, context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var printed models.SweepReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, "run-1", printed.RunID)
	require.Len(t, printed.Failures, 1)
	assert.Equal(t, int64(5), printed.Failures[0].MemberID)
}

func TestPrintReportWithoutReport(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err := printReport[models.ReminderReport](cmd, nil, context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())

	require.NoError(t, printReport(cmd, &models.ReminderReport{}, nil))
	assert.NotZero(t, out.Len())
}
