package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		input string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			log := New(tt.input, "development", &bytes.Buffer{})
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNewLoggerFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("info", "production", buf)
	_, isJSON := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
	log.WithField("run_id", "r1").Info("run stored")
	assert.Equal(t, "r1", parseLogOutput(buf)["run_id"])

	_, isText := New("info", "development", &bytes.Buffer{}).Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestPipelineLoggerEvaluation(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogEvaluation(40, 38, 2, 12)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, float64(38), logEntry["scored"])
	assert.Equal(t, float64(12), logEntry["profitable"])
}

func TestPipelineLoggerWithRun(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log).WithRun("run-123")

	pipelineLogger.LogGeneration(12, 2, 3, 286, "sum")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run-123", logEntry["run_id"])
	assert.Equal(t, float64(286), logEntry["combinations"])
	assert.Equal(t, "sum", logEntry["ev_mode"])
}

func TestPipelineLoggerSelection(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogSelection(19, 7, map[string]int{"conflict": 4, "player_cap": 2})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(19), logEntry["target_size"])
	assert.Equal(t, float64(4), logEntry["rejected_conflict"])
	assert.Equal(t, float64(2), logEntry["rejected_player_cap"])
}

func TestPipelineLoggerExclusion(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogExclusion("Jalen Brunson", "points", "over", errors.New("no history"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "no history", logEntry["error"])
	assert.Equal(t, "Jalen Brunson", logEntry["player"])
}

func TestPipelineLoggerRunCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogRunCompleted(12, 286, 19, 1500*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
	assert.Equal(t, "Pipeline run completed", logEntry["msg"])
}

func BenchmarkPipelineLoggerEvaluation(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	pipelineLogger := NewPipelineLogger(log)

	for i := 0; i < b.N; i++ {
		pipelineLogger.LogEvaluation(40, 38, 2, 12)
	}
}
