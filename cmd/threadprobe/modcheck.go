package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// runtimeModulePath is the module a consumer project must require to
// embed the guest thread runtime.
const runtimeModulePath = "github.com/kolkov/guestthread"

// defaultRequireVersion is written by -fix when the project does not
// pin one yet.
const defaultRequireVersion = "v0.1.0"

// modcheckCommand verifies (and with -fix, establishes) the runtime
// requirement in a consumer project's go.mod.
func modcheckCommand(args []string) {
	fix := false
	dir := "."
	for _, arg := range args {
		switch arg {
		case "-fix", "--fix":
			fix = true
		default:
			dir = arg
		}
	}

	modPath := findGoMod(dir)
	if modPath == "" {
		fmt.Fprintf(os.Stderr, "modcheck: no go.mod found at or above %s\n", dir)
		os.Exit(1)
	}

	version, required, err := runtimeRequirement(modPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "modcheck: %v\n", err)
		os.Exit(1)
	}

	if required {
		fmt.Printf("%s requires %s %s\n", modPath, runtimeModulePath, version)
		return
	}

	if !fix {
		fmt.Printf("%s does not require %s\n", modPath, runtimeModulePath)
		fmt.Println("run with -fix to add the requirement")
		os.Exit(1)
	}

	if err := addRuntimeRequirement(modPath); err != nil {
		fmt.Fprintf(os.Stderr, "modcheck: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: added require %s %s\n", modPath, runtimeModulePath, defaultRequireVersion)
	fmt.Println("run 'go mod tidy' to resolve the dependency")
}

// findGoMod walks up from dir looking for a go.mod file. Returns the
// file path, or "" when none exists up to the filesystem root.
func findGoMod(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		modPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(modPath); err == nil {
			return modPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// runtimeRequirement parses a go.mod and reports whether it requires the
// runtime module, and at which version.
func runtimeRequirement(modPath string) (version string, required bool, err error) {
	data, err := os.ReadFile(modPath)
	if err != nil {
		return "", false, err
	}
	f, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return "", false, fmt.Errorf("parse %s: %w", modPath, err)
	}
	for _, req := range f.Require {
		if req.Mod.Path == runtimeModulePath {
			return req.Mod.Version, true, nil
		}
	}
	return "", false, nil
}

// addRuntimeRequirement rewrites a go.mod with the runtime requirement
// added at the default version.
func addRuntimeRequirement(modPath string) error {
	data, err := os.ReadFile(modPath)
	if err != nil {
		return err
	}
	f, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return fmt.Errorf("parse %s: %w", modPath, err)
	}
	if err := f.AddRequire(runtimeModulePath, defaultRequireVersion); err != nil {
		return fmt.Errorf("add require: %w", err)
	}
	f.Cleanup()
	out, err := f.Format()
	if err != nil {
		return fmt.Errorf("format %s: %w", modPath, err)
	}
	return os.WriteFile(modPath, out, 0644)
}
