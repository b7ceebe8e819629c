package check

import (
	"testing"
)

func TestStopCheckWithoutStart(t *testing.T) {
	checker := NewDistributionAuditChecker()
	// must return immediately when the checker never started
	checker.StopCheck()
}
