package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRegistry(t *testing.T) {
	reg := InitRegistry()
	assert.NotNil(t, reg)

	// Second call returns the same registry
	assert.Same(t, reg, InitRegistry())
	assert.Same(t, reg, GetRegistry())
}

func TestRecordEvaluations(t *testing.T) {
	InitRegistry()

	scoredBefore := testutil.ToFloat64(PropositionsEvaluatedTotal.WithLabelValues("scored"))
	failedBefore := testutil.ToFloat64(PropositionsEvaluatedTotal.WithLabelValues("failed"))

	RecordEvaluations(10, 2)

	assert.Equal(t, scoredBefore+10, testutil.ToFloat64(PropositionsEvaluatedTotal.WithLabelValues("scored")))
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(PropositionsEvaluatedTotal.WithLabelValues("failed")))
}

func TestRecordRejections(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name       string
		rejections map[string]int
	}{
		{name: "conflict", rejections: map[string]int{"conflict": 3}},
		{name: "caps", rejections: map[string]int{"proposition_cap": 5, "player_cap": 1}},
		{name: "none", rejections: map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := map[string]float64{}
			for reason := range tt.rejections {
				before[reason] = testutil.ToFloat64(CombinationsRejectedTotal.WithLabelValues(reason))
			}
			assert.NotPanics(t, func() {
				RecordRejections(tt.rejections)
			})
			for reason, count := range tt.rejections {
				assert.Equal(t, before[reason]+float64(count), testutil.ToFloat64(CombinationsRejectedTotal.WithLabelValues(reason)))
			}
		})
	}
}

func TestGauges(t *testing.T) {
	InitRegistry()

	UpdatePortfolioSize(19)
	UpdateProfitablePropositions(12)

	assert.Equal(t, 19.0, testutil.ToFloat64(PortfolioSize))
	assert.Equal(t, 12.0, testutil.ToFloat64(ProfitablePropositions))
}

func TestRecordPipelineRun(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues(StatusSuccess))
	assert.NotPanics(t, func() {
		RecordPipelineRun(StatusSuccess, 1.25)
		RecordCombinations(6)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(PipelineRunsTotal.WithLabelValues(StatusSuccess)))
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()
	RecordCombinations(1)

	handler := Handler()
	require.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "nba_props_combinations_generated_total"))
}

func BenchmarkRecordEvaluations(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordEvaluations(1, 0)
	}
}
