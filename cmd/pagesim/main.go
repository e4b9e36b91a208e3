// Command pagesim exercises the kernel's page frame allocator against an
// ordinary in-memory heap. It runs the allocation patterns the kernel relies
// on (first-fit reuse, implicit coalescing, zeroed allocations, a full-heap
// run) and prints the resulting allocation table, exiting non-zero if the
// allocator misbehaves.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"rvos/kernel/mem"
)

func main() {
	app := &cli.App{
		Name:  "pagesim",
		Usage: "exercise the kernel page frame allocator against a simulated heap",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "heap-size",
				Value: uint64(mem.Mb),
				Usage: "simulated heap size in bytes (must be a multiple of the 4096-byte page size)",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print each allocator operation as it runs",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	sim, err := newSim(mem.Size(c.Uint64("heap-size")))
	if err != nil {
		return err
	}

	if err := sim.exercise(c.Bool("trace"), os.Stdout); err != nil {
		return errors.Wrap(err, "allocator exercise failed")
	}

	sim.alloc.Dump(os.Stdout)
	return nil
}
