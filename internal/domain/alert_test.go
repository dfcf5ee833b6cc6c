package domain

import (
	"strings"
	"testing"
)

func TestEvaluateAlert(t *testing.T) {
	part := &Part{ID: "p1", Code: "BRK-001", Name: "Brake pads", LowThreshold: 10}

	tests := []struct {
		name         string
		balance      int64
		wantAlert    bool
		wantSeverity AlertSeverity
		wantInMsg    string
	}{
		{name: "at threshold", balance: 10, wantAlert: false},
		{name: "above threshold", balance: 40, wantAlert: false},
		{name: "warning band", balance: 8, wantAlert: true, wantSeverity: AlertSeverityWarning, wantInMsg: "stock is 8, below threshold 10"},
		{name: "exactly thirty percent", balance: 3, wantAlert: true, wantSeverity: AlertSeverityWarning},
		{name: "critical band", balance: 2, wantAlert: true, wantSeverity: AlertSeverityCritical},
		{name: "out of stock", balance: 0, wantAlert: true, wantSeverity: AlertSeverityCritical, wantInMsg: "out of stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := EvaluateAlert(part, tt.balance)

			if !tt.wantAlert {
				if alert != nil {
					t.Fatalf("expected no alert, got %+v", alert)
				}
				return
			}

			if alert == nil {
				t.Fatal("expected alert, got nil")
			}
			if alert.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", alert.Severity, tt.wantSeverity)
			}
			if !strings.HasPrefix(alert.Message, "BRK-001 Brake pads") {
				t.Errorf("message %q does not name the part", alert.Message)
			}
			if tt.wantInMsg != "" && !strings.Contains(alert.Message, tt.wantInMsg) {
				t.Errorf("message %q does not contain %q", alert.Message, tt.wantInMsg)
			}
			if alert.PartID != part.ID || alert.Balance != tt.balance {
				t.Errorf("alert = %+v", alert)
			}
		})
	}
}

func TestEvaluateAlert_ZeroThreshold(t *testing.T) {
	part := &Part{ID: "p1", Code: "X", Name: "Bulk rag", LowThreshold: 0}

	if alert := EvaluateAlert(part, 0); alert != nil {
		t.Fatalf("zero threshold should never alert, got %+v", alert)
	}
}
