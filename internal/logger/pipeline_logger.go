package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for pipeline runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// WithRun returns a copy of the logger tagged with a run identifier.
func (pl *PipelineLogger) WithRun(runID string) *PipelineLogger {
	return &PipelineLogger{Entry: pl.WithField("run_id", runID)}
}

// LogEvaluation logs the outcome of scoring a batch of skeletons.
func (pl *PipelineLogger) LogEvaluation(skeletons, scored, failed, profitable int) {
	pl.WithFields(logrus.Fields{
		"skeletons":  skeletons,
		"scored":     scored,
		"failed":     failed,
		"profitable": profitable,
	}).Info("Propositions evaluated")
}

// LogGeneration logs combination enumeration.
func (pl *PipelineLogger) LogGeneration(propositions, minLegs, maxLegs, combinations int, evMode string) {
	pl.WithFields(logrus.Fields{
		"propositions": propositions,
		"min_legs":     minLegs,
		"max_legs":     maxLegs,
		"combinations": combinations,
		"ev_mode":      evMode,
	}).Info("Combinations generated")
}

// LogSelection logs portfolio assembly.
func (pl *PipelineLogger) LogSelection(targetSize, selected int, rejections map[string]int) {
	fields := logrus.Fields{
		"target_size": targetSize,
		"selected":    selected,
	}
	for reason, count := range rejections {
		fields["rejected_"+reason] = count
	}
	pl.WithFields(fields).Info("Portfolio selected")
}

// LogExclusion logs a skeleton dropped because it could not be scored.
func (pl *PipelineLogger) LogExclusion(player, stat, side string, err error) {
	pl.WithFields(logrus.Fields{
		"player": player,
		"stat":   stat,
		"side":   side,
	}).WithError(err).Warn("Proposition excluded")
}

// LogRunCompleted logs the end of a run.
func (pl *PipelineLogger) LogRunCompleted(propositions, combinations, parlays int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"propositions": propositions,
		"combinations": combinations,
		"parlays":      parlays,
		"duration_ms":  duration.Milliseconds(),
	}).Info("Pipeline run completed")
}
