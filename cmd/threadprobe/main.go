// Package main implements the threadprobe CLI tool.
//
// threadprobe answers the questions an embedder asks before wiring the
// guest thread runtime into a project:
//
//  1. Which thread backend is compiled in on this host, and does the
//     fast goroutine-identity path work on this toolchain?
//  2. Does a consumer project's go.mod already require the runtime, and
//     at which version?
//
// Usage:
//
//	threadprobe probe              # Probe host thread capabilities
//	threadprobe modcheck [dir]     # Check a project's go.mod linkage
//	threadprobe modcheck -fix .    # Add the runtime requirement
//
// This is the CLI entry point for the standalone probe tool.
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/guestthread/thread"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "probe":
		probeCommand(os.Args[2:])
	case "modcheck":
		modcheckCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("threadprobe version %s\n", thread.Version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`threadprobe - Guest Thread Runtime Probe Tool

USAGE:
    threadprobe <command> [arguments]

COMMANDS:
    probe      Probe host thread capabilities
    modcheck   Check (or fix) a project's go.mod runtime linkage
    version    Show version information
    help       Show this help message

EXAMPLES:
    # Report the compiled-in backend and identity path
    threadprobe probe

    # Check whether the current project requires the runtime
    threadprobe modcheck .

    # Add the runtime requirement to a project's go.mod
    threadprobe modcheck -fix ./myproject

ABOUT:
    threadprobe is a standalone companion to the guest thread runtime. It
    spawns a short-lived probe thread to verify that spawn, handshake,
    exit and reclamation all work on the current host, and reports which
    backend and goroutine-identity path the build selected.

    The modcheck command parses a consumer project's go.mod and verifies
    the runtime module is required, optionally adding the requirement in
    place.

FOR MORE INFORMATION:
    Repository: https://github.com/kolkov/guestthread
`)
}
