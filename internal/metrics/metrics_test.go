package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFindingsGenerated(t *testing.T) {
	before := testutil.ToFloat64(findingsGenerated.WithLabelValues("checklist"))
	FindingsGenerated("checklist", 3)
	FindingsGenerated("checklist", 0)
	assert.Equal(t, before+3, testutil.ToFloat64(findingsGenerated.WithLabelValues("checklist")))
}

func TestSetComplianceScore(t *testing.T) {
	SetComplianceScore(42, 63)
	assert.Equal(t, 63.0, testutil.ToFloat64(complianceScore.WithLabelValues("42")))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "unmatched", "404"))
	RecordRequest("GET", "", 404, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
