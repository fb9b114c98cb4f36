package metrics

import "time"

// NoOp discards every measurement.
type NoOp struct{}

// TransferFinished does nothing.
func (NoOp) TransferFinished(string, int64, time.Duration) {}

// RequestShared does nothing.
func (NoOp) RequestShared(string) {}

// LoadFinished does nothing.
func (NoOp) LoadFinished(string) {}

// FilesReclaimed does nothing.
func (NoOp) FilesReclaimed(int, int) {}
