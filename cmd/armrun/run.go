package main

import (
	"fmt"
	"os"

	"github.com/nullspan/armrun/cpu"
	"github.com/nullspan/armrun/elf32"
	"github.com/nullspan/armrun/internal/armlog"
	"github.com/nullspan/armrun/loader"
	"github.com/nullspan/armrun/memory"
	"github.com/nullspan/armrun/sysbridge"
)

// destroyWarn adapts the logger to memory.Map.Destroy's plain
// printf-shaped warning callback, routing teardown diagnostics onto the
// memory channel.
func destroyWarn(log *armlog.Logger) func(string, ...any) {
	return func(format string, args ...any) {
		log.Logf(armlog.Memory, format, args...)
	}
}

// run wires the guest execution pipeline end to end: ELF reader -> segment
// loader -> guest memory map <- interpreter -> syscall bridge -> host
// (spec.md §2's data-flow diagram), then terminates the process with the
// guest's exit code.
func run(target string, opts *options) error {
	log, err := buildLogger(opts)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("reading %s: %w", target, err)
	}

	elfFile, err := elf32.Parse(raw)
	if err != nil {
		return err
	}
	if log.Enabled(armlog.Elf) {
		log.Logf(armlog.Elf, "parsed %s: entry=%#08x phnum=%d", target, elfFile.Header.Entry, elfFile.Header.Phnum)
	}

	mem := &memory.Map{}
	if err := loader.Load(elfFile, mem, log); err != nil {
		mem.Destroy(destroyWarn(log))
		return err
	}

	handler, err := selectPolicy(opts.syscallPolicy)
	if err != nil {
		mem.Destroy(destroyWarn(log))
		return err
	}
	handler = sysbridge.WithTrace(handler, log)

	machine := cpu.New(mem, elfFile.Header.Entry, handler, log)
	status, runErr := machine.Run()

	mem.Destroy(destroyWarn(log))

	if runErr != nil {
		return runErr
	}

	os.Exit(int(status))
	return nil
}

func selectPolicy(name string) (sysbridge.Handler, error) {
	switch name {
	case "forward":
		return sysbridge.Forward, nil
	case "sandbox":
		return sysbridge.Sandbox, nil
	case "deny":
		return sysbridge.Deny, nil
	default:
		return nil, fmt.Errorf("unknown syscall policy %q (want forward, deny, or sandbox)", name)
	}
}
