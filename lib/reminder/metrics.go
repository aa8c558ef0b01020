package reminder

type passMetrics struct {
	due       int // stages newly due this pass
	delivered int // successful deliveries
	silent    int // due stages with no subscribers
	errored   int // failed lookups or deliveries
}
