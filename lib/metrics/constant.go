package metrics

const (
	Namespace     = "pollpulse"
	PollSubsystem = "poll"
	APISubsystem  = "api"
)
