package services

import (
	"context"

	"go.uber.org/zap"
)

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, log *zap.Logger, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		log.Debug("audit log write failed", zap.String("action", entry.Action), zap.Error(err))
	}
}
