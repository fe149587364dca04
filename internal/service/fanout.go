package service

import "golang.org/x/sync/errgroup"

// newGroup returns an errgroup bounded to limit goroutines; limit <= 0 is
// unbounded. Tasks report through their own result slot and always return nil,
// so one failure never cancels siblings.
func newGroup(limit int) *errgroup.Group {
	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return g
}
