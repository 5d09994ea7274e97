package views

import (
	"fmt"

	"github.com/rahul4469/linguist-ai/internal/models"
)

// StateView flattens a RequestState for templates. Only the fields of the
// current phase are populated.
type StateView struct {
	Status  models.Status
	Input   string
	Result  *models.AnalysisResponse
	Message string
}

func (v StateView) IsIdle() bool    { return v.Status == models.StatusIdle }
func (v StateView) IsLoading() bool { return v.Status == models.StatusLoading }
func (v StateView) IsSuccess() bool { return v.Status == models.StatusSuccess }
func (v StateView) IsError() bool   { return v.Status == models.StatusError }

// NewStateView maps every RequestState variant to its view. An unknown
// variant is a programming error and panics.
func NewStateView(input string, state models.RequestState) StateView {
	switch s := state.(type) {
	case models.StateIdle:
		return StateView{Status: models.StatusIdle, Input: input}
	case models.StateLoading:
		return StateView{Status: models.StatusLoading, Input: s.Input}
	case models.StateSuccess:
		return StateView{Status: models.StatusSuccess, Input: input, Result: s.Result}
	case models.StateError:
		return StateView{Status: models.StatusError, Input: input, Message: s.Message}
	default:
		panic(fmt.Sprintf("views: unhandled request state %T", state))
	}
}
