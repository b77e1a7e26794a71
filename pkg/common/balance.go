package common

import (
	"time"

	"github.com/paperdex/paperdex/pkg/utility"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

type Balance struct {
	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts,omitempty"`
	Value       fixed.Point         `json:"value"`
}

type Equity struct {
	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts,omitempty"`
	Value       fixed.Point         `json:"value"`
}
