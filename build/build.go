// Package build shells out to the external step that produces the module tree.
package build

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/provdev-cli/provdev/key"
	"github.com/provdev-cli/provdev/log"
	"github.com/spf13/viper"
)

// FailureError reports a build command that could not run or exited
// non-zero. The captured output travels with it so the HTTP caller sees
// what the build saw.
type FailureError struct {
	Command string
	Output  string
	Err     error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("build %q failed: %s", e.Command, e.Err)
}

func (e *FailureError) Unwrap() error {
	return e.Err
}

// Run executes the configured build command synchronously, blocking the
// caller until it exits. The command string is split on whitespace and run
// in the working directory; combined output is returned either way.
func Run() (string, error) {
	command := viper.GetString(key.BuildCommand)
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", &FailureError{
			Command: command,
			Err:     errors.New("build command is not configured (set " + key.BuildCommand + ")"),
		}
	}

	log.Infof("running build: %s", command)

	out, err := exec.Command(parts[0], parts[1:]...).CombinedOutput()
	if err != nil {
		return string(out), &FailureError{Command: command, Output: string(out), Err: err}
	}

	return string(out), nil
}
