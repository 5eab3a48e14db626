package diskprep

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/retry.v1"
	"gopkg.in/tomb.v2"

	"github.com/koitococo/infraplan/errs"
)

// pollInterval is the device-node settle poll cadence pinned by §4.4
// step 6: "poll exists(path) every 1000 ms". A var, not a const, so
// tests can shorten it.
var pollInterval = time.Second

// existsFn is overridden in tests.
var existsFn = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// waitForReady blocks until path exists on disk, polling once a second.
// It is cancellable by SIGINT: a tomb.Tomb supervises a signal.Notify
// goroutine; its Dying channel is handed to a gopkg.in/retry.v1 strategy
// as the stop channel, so a SIGINT both unwinds the watcher goroutine
// and breaks the poll loop in the same step.
func waitForReady(path string) error {
	var t tomb.Tomb
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	t.Go(func() error {
		select {
		case <-sigCh:
			// returning a non-nil error here triggers tomb's automatic
			// Kill, which closes Dying() and stops the retry loop below.
			return &errs.Interrupted{During: "waiting for " + path}
		case <-t.Dying():
			return nil
		}
	})

	strategy := retry.Regular{
		Total: 24 * time.Hour, // effectively unbounded; real exits are success or stop channel
		Delay: pollInterval,
	}

	ready := false
	for a := retry.Start(strategy, t.Dying()); a.Next(); {
		if existsFn(path) {
			ready = true
			break
		}
	}

	t.Kill(nil)
	waitErr := t.Wait()

	if ready {
		return nil
	}
	if waitErr != nil {
		return waitErr
	}
	return &errs.Interrupted{During: "waiting for " + path}
}
