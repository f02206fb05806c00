package ports

type MetricsRecorder interface {
	LoginAttempt(result string)
	Logout()
	Transition(machine, outcome string)
	AuthorizationDenied(predicate string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) LoginAttempt(string)        {}
func (NopMetrics) Logout()                    {}
func (NopMetrics) Transition(string, string)  {}
func (NopMetrics) AuthorizationDenied(string) {}
