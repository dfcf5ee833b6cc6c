package domain

import (
	"context"
	"testing"
)

func TestNewAuditLogCarriesRequestMeta(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &User{ID: "user-1"})
	ctx = ContextWithRequestMeta(ctx, RequestMeta{IPAddress: "10.1.2.3", UserAgent: "curl/8", RequestID: "req-1"})

	log := NewAuditLog(ctx, "audit-1", AuditActionStockMove, "part", "part-1", map[string]any{"delta": 3})

	if log.UserID != "user-1" || log.IPAddress != "10.1.2.3" || log.UserAgent != "curl/8" || log.RequestID != "req-1" {
		t.Fatalf("unexpected audit log %+v", log)
	}
	if log.Status != string(AuditStatusSuccess) || log.AfterState["delta"] != float64(3) {
		t.Fatalf("unexpected state %+v", log)
	}
}

func TestNewAuditLogWithoutRequest(t *testing.T) {
	log := NewAuditLog(context.Background(), "audit-2", AuditActionJobCreate, "job", "job-1", nil)

	if log.UserID != "system" || log.IPAddress != "" || log.AfterState != nil {
		t.Fatalf("unexpected audit log %+v", log)
	}
}
