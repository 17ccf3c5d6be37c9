// Command minigrad trains small classifiers on synthetic data with the minigrad
// autodiff engine.
//
// Usage:
//
//	minigrad train [flags]
//	minigrad version
//
// Run "minigrad train -help" for the training flags. The klog flags (-v,
// -logtostderr, ...) are accepted by every command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "v0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "minigrad %s: reverse-mode autodiff on the CPU\n\n", version)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  train      Train an MLP on synthetic Gaussian blobs")
	fmt.Fprintln(os.Stderr, "  version    Show version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("minigrad %s\n", version)
	case "train":
		// Control+C stops training between batches; the epochs completed so far
		// are still reported.
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		runTrain(ctx, os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}
