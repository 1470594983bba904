package report

import (
	"golang.org/x/sync/singleflight"
)

// Coordinator collapses concurrent generation requests for the same project
// into a single execution. All callers that share a key receive the same
// *Response instance; the in-flight entry is cleared once the shared result
// resolves, so a later request can retry after a failure.
type Coordinator struct {
	group singleflight.Group
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// RunExclusive executes fn for key unless an execution for the same key is
// already in flight, in which case the caller joins it as a waiter. The
// returned shared flag reports whether the result was fanned out to more than
// one caller.
func (c *Coordinator) RunExclusive(key string, fn func() *Response) (*Response, bool) {
	value, _, shared := c.group.Do(key, func() (interface{}, error) {
		return fn(), nil
	})
	resp, _ := value.(*Response)
	return resp, shared
}
