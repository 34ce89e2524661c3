package observability

// Metric name prefixes
const (
	MetricPrefix = "gamenight"
)

// Metric names
const (
	// Wagering metrics
	WagersPlacedTotal  = MetricPrefix + ".wagers.placed_total"
	WagersSettledTotal = MetricPrefix + ".wagers.settled_total"
	WagersOpen         = MetricPrefix + ".wagers.open"

	// Odds metrics
	OddsRepricingsTotal = MetricPrefix + ".odds.repricings_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelEventType  = "event_type"
	LabelResult     = "result"
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Settlement results
const (
	ResultWon       = "won"
	ResultLost      = "lost"
	ResultNoContest = "no_contest"
	ResultRefunded  = "refunded"
)
