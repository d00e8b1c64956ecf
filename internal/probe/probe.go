package probe

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
)

// Default probe command lines. The file path is appended as the last argument.
const (
	DefaultSpotlightCommand = "mdls"
	DefaultXattrCommand     = "xattr -l"
	DefaultFFProbeCommand   = "ffprobe -v quiet -print_format json -show_format -show_streams"
	DefaultIdentifyCommand  = "identify -verbose"
)

const waitDelay = 2 * time.Second

// Command is an external program and its leading arguments.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a shell-quoted command line into a Command.
func ParseCommand(line string) (Command, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return Command{}, errors.Wrapf(err, "parsing command %q", line)
	}
	if len(words) == 0 {
		return Command{}, errors.Newf("empty command")
	}
	return Command{Name: words[0], Args: words[1:]}, nil
}

// String renders the command back into a shell-quoted line.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// Runner invokes external probe programs.
type Runner struct {
	// Timeout bounds a single invocation. Zero means no timeout: the call
	// blocks until the program exits or ctx is cancelled.
	Timeout time.Duration
}

// Output runs cmd with path appended and returns its stdout. A non-zero exit
// status is an error carrying the program's stderr.
func (r Runner) Output(ctx context.Context, cmd Command, path string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(cmd.Args)+1)
	args = append(args, cmd.Args...)
	args = append(args, path)

	c := exec.CommandContext(ctx, cmd.Name, args...)
	// Children that inherit stdout must not keep Run blocked after a kill.
	c.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "%s interrupted", cmd.Name)
		}
		return nil, errors.Wrapf(err, "%s error - %s", cmd.Name, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
