package sysconf

import (
	"github.com/koitococo/infraplan/osutil"
)

var (
	RunFn       = &runFn
	ChrootRunFn = &chrootRunFn
)

type (
	RunFunc       = func([]string, osutil.RunOpts) (osutil.Result, error)
	ChrootRunFunc = func(string, []string) (osutil.Result, error)
)

var AptRepoPath = aptRepoPath
