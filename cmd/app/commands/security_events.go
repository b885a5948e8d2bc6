package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	auditUseCase "github.com/allisson/devicetrust/internal/audit/usecase"
)

// RunListSecurityEvents prints up to limit security events, newest first. An empty
// deviceID lists events of every device.
func RunListSecurityEvents(
	ctx context.Context,
	audit auditUseCase.AuditUseCase,
	writer io.Writer,
	deviceID string,
	limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	events, err := audit.Query(ctx, deviceID, limit)
	if err != nil {
		return fmt.Errorf("failed to list security events: %w", err)
	}

	if format == "json" {
		if events == nil {
			events = []*auditDomain.SecurityEvent{}
		}
		return writeJSON(writer, events)
	}

	if len(events) == 0 {
		_, _ = fmt.Fprintln(writer, "No security events found")
		return nil
	}
	for _, event := range events {
		_, _ = fmt.Fprintf(writer, "%s  %-24s  %-20s  %s\n",
			event.Timestamp.Format(time.RFC3339),
			event.EventType,
			event.DeviceID,
			formatDetails(event.Details),
		)
	}
	return nil
}

// formatDetails renders details as sorted key=value pairs.
func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, details[key]))
	}
	return strings.Join(pairs, " ")
}

// RunVerifySecurityEvents checks the HMAC signatures of a page of security events and
// fails when any signature does not match.
func RunVerifySecurityEvents(
	ctx context.Context,
	audit auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	offset, limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if offset < 0 {
		return fmt.Errorf("offset must be zero or positive, got: %d", offset)
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	logger.Info("verifying security events", slog.Int("offset", offset), slog.Int("limit", limit))

	report, err := audit.Verify(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to verify security events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"total":       report.Total,
			"valid":       report.Valid,
			"invalid":     report.Invalid,
			"invalid_ids": report.InvalidIDs,
			"passed":      report.Invalid == 0,
		}); err != nil {
			return err
		}
	} else {
		outputVerifyText(writer, report)
	}

	logger.Info("verification completed",
		slog.Int("total", report.Total),
		slog.Int("valid", report.Valid),
		slog.Int("invalid", report.Invalid),
	)

	if report.Invalid > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.Invalid)
	}
	return nil
}

func outputVerifyText(writer io.Writer, report *auditDomain.VerificationReport) {
	_, _ = fmt.Fprintf(writer, "Security Event Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "=====================================\n\n")
	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.Total)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", report.Invalid)

	switch {
	case report.Invalid > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d event(s) failed integrity check!\n\n", report.Invalid)
		_, _ = fmt.Fprintf(writer, "Invalid Event IDs:\n")
		for _, id := range report.InvalidIDs {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.Total == 0:
		_, _ = fmt.Fprintf(writer, "Status: No events found\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

// RunCleanSecurityEvents deletes security events older than days. With dryRun it only
// reports how many would be deleted.
func RunCleanSecurityEvents(
	ctx context.Context,
	audit auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning security events", slog.Int("days", days), slog.Bool("dry_run", dryRun))

	count, err := audit.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete security events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		}); err != nil {
			return err
		}
	} else if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would delete %d security event(s) older than %d day(s)\n", count, days)
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d security event(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}
