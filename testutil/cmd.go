// Package testutil provides the small test harness the rest of this
// repository's test suites share: a fake-executable recorder in the
// style of the teacher's own testutil.MockCommand, plus a BaseTest
// embeddable for cleanup-stack management. The teacher's testutil
// package itself was not part of the retrieved source (only imported by
// its tests), so this is a from-scratch rebuild of the same shape,
// inferred from how gadget/install and gadget's test suites call it.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	. "gopkg.in/check.v1"
)

// BaseTest gives suites a cleanup stack, mirroring the teacher's
// testutil.BaseTest embedding used in every gocheck suite.
type BaseTest struct {
	cleanups []func()
}

func (b *BaseTest) SetUpTest(c *C) { b.cleanups = nil }

func (b *BaseTest) TearDownTest(c *C) {
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		b.cleanups[i]()
	}
	b.cleanups = nil
}

// AddCleanup registers f to run, LIFO, at TearDownTest.
func (b *BaseTest) AddCleanup(f func()) {
	b.cleanups = append(b.cleanups, f)
}

// MockCmd is a fake executable that records every invocation's argv
// (stdin is not recorded), and exits per the caller-supplied shell
// script body.
type MockCmd struct {
	binDir   string
	callsLog string
	oldPath  string
	exe      string
}

// MockCommand installs a fake `basename` executable on PATH that runs
// `script` (a shell script body) and records its own invocation. Restore
// restores PATH; the executable stays in its c.MkDir() directory.
func MockCommand(c *C, basename, script string) *MockCmd {
	binDir := c.MkDir()
	m := &MockCmd{
		binDir:   binDir,
		callsLog: filepath.Join(binDir, ".calls.log"),
		oldPath:  os.Getenv("PATH"),
	}
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+m.oldPath); err != nil {
		c.Fatalf("cannot set PATH: %v", err)
	}
	m.Also(c, basename, script)
	return m
}

// Also installs an additional fake executable in the same bin directory,
// so several commands can share one MockCmd/PATH entry.
func (m *MockCmd) Also(c *C, basename, script string) *MockCmd {
	exe := filepath.Join(m.binDir, basename)
	body := fmt.Sprintf(`#!/bin/sh
{
  printf '%%s' "$0"
  for a in "$@"; do
    printf '\x1f%%s' "$a"
  done
  printf '\n'
} >> %s
%s
`, shellQuote(m.callsLog), script)
	if err := os.WriteFile(exe, []byte(body), 0755); err != nil {
		c.Fatalf("cannot write mock command %s: %v", basename, err)
	}
	m.exe = exe
	return m
}

// Restore removes the mock from PATH.
func (m *MockCmd) Restore() {
	os.Setenv("PATH", m.oldPath)
}

// Calls returns every recorded invocation as an argv slice, in order.
func (m *MockCmd) Calls() [][]string {
	data, err := os.ReadFile(m.callsLog)
	if err != nil {
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	out := make([][]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		out = append(out, strings.Split(line, "\x1f"))
	}
	return out
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// FakePartuuidNodes writes enough of a parted/by-partuuid layout under root
// for tests that need real files to stat, without touching any real
// block device: one empty file per entry of uuids.
func FakePartuuidNodes(c *C, root string, uuids []string) {
	dir := filepath.Join(root, "dev", "disk", "by-partuuid")
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.Fatalf("cannot create %s: %v", dir, err)
	}
	for _, u := range uuids {
		if err := os.WriteFile(filepath.Join(dir, u), nil, 0644); err != nil {
			c.Fatalf("cannot create partuuid node: %v", err)
		}
	}
}

// Itoa is a tiny helper kept here so callers building argv slices in
// tests don't need a separate strconv import for a single conversion.
func Itoa(i int) string { return strconv.Itoa(i) }
