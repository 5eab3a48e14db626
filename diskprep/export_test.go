package diskprep

import "github.com/koitococo/infraplan/osutil"

// RunFn lets tests substitute the external-command entry point.
var RunFn = &runFn

// ExistsFn lets tests substitute the device-node settle check.
var ExistsFn = &existsFn

// PollInterval exposes the settle poll cadence for test shortening.
var PollInterval = &pollInterval

type RunFunc = func([]string, osutil.RunOpts) (osutil.Result, error)
