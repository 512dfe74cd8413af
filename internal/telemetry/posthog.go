package telemetry

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

const reportEvent = "tally_error_report"

// PosthogReporter forwards reports as posthog events and also logs them. Without an API key
// it only logs.
type PosthogReporter struct {
	client     posthog.Client
	distinctID string
	log        *LogReporter
	logger     *slog.Logger
}

func NewPosthogReporter(apiKey, endpoint, distinctID string, logger *slog.Logger) *PosthogReporter {
	r := &PosthogReporter{
		distinctID: distinctID,
		log:        NewLogReporter(logger),
		logger:     logger,
	}
	if apiKey == "" {
		logger.Debug("posthog API key is empty, reports are logged only")
		return r
	}

	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Warn("failed to initialize posthog client", slog.Any("error", err))
		return r
	}
	r.client = client
	return r
}

func (r *PosthogReporter) IsInitialized() bool {
	return r.client != nil
}

func (r *PosthogReporter) Report(err error, fields map[string]string) {
	r.log.Report(err, fields)
	if r.client == nil {
		return
	}

	props := posthog.NewProperties()
	if err != nil {
		props.Set("error", err.Error())
	}
	for k, v := range fields {
		props.Set(k, v)
	}
	if enqErr := r.client.Enqueue(posthog.Capture{
		DistinctId: r.distinctID,
		Event:      reportEvent,
		Properties: props,
	}); enqErr != nil {
		r.logger.Debug("failed to enqueue report", slog.Any("error", enqErr))
	}
}

// Close flushes pending events.
func (r *PosthogReporter) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
