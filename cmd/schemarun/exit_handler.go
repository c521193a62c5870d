package main

import (
	"errors"
	"os"

	"github.com/loykin/schemarun/internal/common"
	"github.com/loykin/schemarun/internal/runner"
)

// exiter ends the process; tests swap it out.
type exiter interface {
	Exit(code int)
}

type processExiter struct{}

func (processExiter) Exit(code int) { os.Exit(code) }

var exitHandler exiter = processExiter{}

// commandError carries the failure policy of the command that returned err.
type commandError struct {
	policy runner.Policy
	err    error
}

func (e *commandError) Error() string { return e.err.Error() }

func (e *commandError) Unwrap() error { return e.err }

// exitCode maps a command error onto the process status. Errors from
// commands without a policy, or from flag parsing, are fatal.
func exitCode(err error) int {
	var ce *commandError
	if errors.As(err, &ce) {
		return ce.policy.ExitCode(ce.err)
	}
	return runner.Fatal.ExitCode(err)
}

// finish logs err and terminates with the status its policy maps it to.
func finish(err error) {
	if err == nil {
		return
	}
	code := exitCode(err)
	common.GetLogger().WithComponent("main").Error("command failed", "error", err, "exit_code", code)
	if code != 0 {
		exitHandler.Exit(code)
	}
}
