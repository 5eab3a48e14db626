package reboot

import "github.com/koitococo/infraplan/kexecutil"

var (
	DiscoverFn       = &discoverFn
	ComposeCmdlineFn = &composeCmdlineFn
	LoadFn           = &loadFn
)

type (
	DiscoverFunc       = func(kexecutil.Inputs) (string, string, error)
	ComposeCmdlineFunc = func(kexecutil.Inputs) (string, error)
	LoadFunc           = func(string, string, string) error
)
