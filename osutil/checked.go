package osutil

import "github.com/koitococo/infraplan/errs"

// RunChecked runs argv and turns a non-zero exit (or spawn failure) into
// an error, so call sites that only care about success/failure don't
// have to repeat the ExitCode check themselves.
func RunChecked(argv []string, opts RunOpts) (Result, error) {
	res, err := Run(argv, opts)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &errs.ExternalCommandFailed{
			Argv:     argv,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}
