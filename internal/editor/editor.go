// Package editor opens worktrees in the configured editor command.
//
// The editor setting is a shell command. Placeholders are replaced with
// shell-quoted values before it runs through sh -c:
//
//   - {path}    - worktree directory
//   - {project} - project name
//   - {branch}  - branch checked out in the worktree
//
// A command without {path} gets the quoted path appended, so "code" and
// "code {path}" behave the same.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raphi011/wtp/internal/cmd"
	"github.com/raphi011/wtp/internal/log"
)

// launchTimeout bounds how long the editor command may block. GUI editors
// return immediately after handing off to a running instance.
const launchTimeout = 30 * time.Second

// Target is the worktree being opened.
type Target struct {
	Path    string
	Project string
	Branch  string
}

// shellQuote quotes s for safe use in shell commands.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Command expands the placeholders of editor for t.
func Command(editor string, t Target) (string, error) {
	editor = strings.TrimSpace(editor)
	if editor == "" {
		return "", errors.New("no editor configured")
	}

	if !strings.Contains(editor, "{path}") {
		editor += " {path}"
	}
	r := strings.NewReplacer(
		"{path}", shellQuote(t.Path),
		"{project}", shellQuote(t.Project),
		"{branch}", shellQuote(t.Branch),
	)
	return r.Replace(editor), nil
}

// Open runs the editor command for t in the worktree directory.
func Open(ctx context.Context, editor string, t Target) error {
	command, err := Command(editor, t)
	if err != nil {
		return err
	}

	log.FromContext(ctx).Debug("opening editor", "path", t.Path, "command", command)
	if _, err := cmd.Shell(ctx, cmd.Options{Dir: t.Path, Timeout: launchTimeout}, command); err != nil {
		return fmt.Errorf("open %s: %w", t.Path, err)
	}
	return nil
}
