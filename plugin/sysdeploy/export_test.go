package sysdeploy

import (
	"github.com/koitococo/infraplan/chroot"
	"github.com/koitococo/infraplan/diskprep"
	"github.com/koitococo/infraplan/extract"
	"github.com/koitococo/infraplan/osutil"
)

var (
	DiskprepPrepareFn = &diskprepPrepareFn
	WriteFstabFn      = &writeFstabFn
	ExtractFn         = &extractFn
	ChrootPrepareFn   = &chrootPrepareFn
	ChrootRunFn       = &chrootRunFn
	ChrootCleanupFn   = &chrootCleanupFn
)

type (
	DiskprepPrepareFunc = func(diskprep.Options) (diskprep.PartUUIDPaths, error)
	WriteFstabFunc      = func(string, diskprep.PartUUIDPaths) error
	ExtractFunc         = func(extract.Options) error
	ChrootPrepareFunc   = func(string) error
	ChrootRunFunc       = func(string, []string) (osutil.Result, error)
	ChrootCleanupFunc   = func(string)
)
