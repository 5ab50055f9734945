package cmd

import (
	"testing"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
)

func TestCheckFailOn(t *testing.T) {
	warning := sampleReport()
	failing := sampleReport()
	failing.Status = audit.StatusFail
	passing := sampleReport()
	passing.Status = audit.StatusPass

	tests := []struct {
		name    string
		failOn  string
		report  *audit.AuditReport
		diff    *audit.BaselineDiff
		wantErr bool
	}{
		{"empty never fails", "", failing, nil, false},
		{"fail on fail", "fail", failing, nil, true},
		{"fail ignores warning", "fail", warning, nil, false},
		{"warning on warning", "warning", warning, nil, true},
		{"warning passes pass", "warning", passing, nil, false},
		{"regression without baseline", "regression", failing, nil, false},
		{"regression", "regression", passing, &audit.BaselineDiff{Regressed: true, ScoreDelta: -5}, true},
		{"no regression", "regression", passing, &audit.BaselineDiff{ScoreDelta: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFailOn(tt.failOn, tt.report, tt.diff)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkFailOn() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfileNames(t *testing.T) {
	names := profileNames([]model.Viewport{{Name: "desktop"}, {Name: "mobile"}})
	if len(names) != 2 || names[0] != "desktop" || names[1] != "mobile" {
		t.Errorf("unexpected names: %v", names)
	}
}
