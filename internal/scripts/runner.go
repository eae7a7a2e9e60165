package scripts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
)

// RunResult describes one finished script invocation.
type RunResult struct {
	Script     string   `json:"script"`
	Command    string   `json:"command"`
	Output     []string `json:"output"`
	ReturnCode int      `json:"return_code"`
	Success    bool     `json:"success"`
}

// Command assembles the shell line Run would execute for name. Every argument
// is quoted and appended to every step; steps are chained with &&, so a
// failing step stops the remaining ones.
func (r *Registry) Command(name string, args []string) (string, error) {
	script, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}

	steps := make([]string, 0, len(script.Steps)+1)
	steps = append(steps, "cd "+shellescape.Quote(r.dir))
	for _, step := range script.Steps {
		steps = append(steps, appendArguments(step, args))
	}
	return strings.Join(steps, StepSeparator), nil
}

func appendArguments(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellescape.Quote(arg)
	}
	return command + " " + strings.Join(quoted, " ")
}

// Run executes the named script synchronously and captures its combined
// output. A non-zero exit status is reported in the result, not as an error;
// the only error is ErrScriptNotFound, returned before anything is spawned.
func (r *Registry) Run(ctx context.Context, name string, args []string) (*RunResult, error) {
	command, err := r.Command(name, args)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Running composer script", "script", name, "args", len(args))
	r.logger.Debug("Assembled command", "script", name, "command", command)
	start := time.Now()
	defer r.logger.LogPerformance("run "+name, start)

	// One buffer for both streams: the caller sees stderr interleaved with
	// stdout in the order the script wrote them.
	var buf bytes.Buffer
	cmd := shellCommand(ctx, command)
	cmd.Dir = r.dir
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	returnCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			returnCode = exitErr.ExitCode()
		} else {
			r.logger.Error("Failed to start script", "script", name, "error", err)
			buf.WriteString(err.Error())
			returnCode = -1
		}
	}

	result := &RunResult{
		Script:     name,
		Command:    command,
		Output:     splitLines(buf.Bytes()),
		ReturnCode: returnCode,
		Success:    returnCode == 0,
	}

	if !result.Success {
		r.logger.Warn("Composer script failed", "script", name, "return_code", returnCode)
	}
	return result, nil
}

func shellCommand(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "sh", "-c", line)
}

// splitLines returns one entry per output line without trailing whitespace.
// Lines are not length limited.
func splitLines(out []byte) []string {
	if len(out) == 0 {
		return []string{}
	}

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return lines
}
