package metrics

import "time"

// ResultLabel enumerates transform result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// PageOutcome enumerates how a page conversion ended.
type PageOutcome string

const (
	PageConverted PageOutcome = "converted" // written without warnings
	PageWarnings  PageOutcome = "warnings"  // written with at least one warning
	PageFailed    PageOutcome = "failed"    // not written
)

// Recorder defines observability hooks for a conversion run.
type Recorder interface {
	ObserveTransformDuration(transform string, d time.Duration)
	IncTransformResult(transform string, result ResultLabel)
	IncPageOutcome(outcome PageOutcome)
	IncWarning(kind string)
	IncAttachmentCopy(success bool)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // outcome: success|warning|failed|canceled
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTransformDuration(string, time.Duration) {}
func (NoopRecorder) IncTransformResult(string, ResultLabel)        {}
func (NoopRecorder) IncPageOutcome(PageOutcome)                    {}
func (NoopRecorder) IncWarning(string)                             {}
func (NoopRecorder) IncAttachmentCopy(bool)                        {}
func (NoopRecorder) ObserveRunDuration(time.Duration)              {}
func (NoopRecorder) IncRunOutcome(string)                          {}
