package models

// Status names the lifecycle phase of an analysis request.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// RequestState is one of StateIdle, StateLoading, StateSuccess or StateError.
// The interface is sealed; a state carries exactly the data of its phase, so
// a loading state can never also hold a stale result.
type RequestState interface {
	Status() Status
	requestState()
}

type StateIdle struct{}

// StateLoading holds the text that is currently being analyzed.
type StateLoading struct {
	Input string
}

type StateSuccess struct {
	Result *AnalysisResponse
}

// StateError holds a message fit for display.
type StateError struct {
	Message string
}

func (StateIdle) Status() Status    { return StatusIdle }
func (StateLoading) Status() Status { return StatusLoading }
func (StateSuccess) Status() Status { return StatusSuccess }
func (StateError) Status() Status   { return StatusError }

func (StateIdle) requestState()    {}
func (StateLoading) requestState() {}
func (StateSuccess) requestState() {}
func (StateError) requestState()   {}

// IsLoading reports whether s is a StateLoading.
func IsLoading(s RequestState) bool {
	_, ok := s.(StateLoading)
	return ok
}
