package metrics

func InitPrometheusMetrics() {
	Version = PromVersion()
	Poll = PromPollMetrics()
	API = PromAPIMetrics()
}
