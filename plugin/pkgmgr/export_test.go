package pkgmgr

import "github.com/koitococo/infraplan/osutil"

var RunFn = &runFn

type RunFunc = func([]string, osutil.RunOpts) (osutil.Result, error)
