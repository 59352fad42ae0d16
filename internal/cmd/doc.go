// Package cmd runs external processes for wtp.
//
// Failures carry the trimmed stderr output as their message, so a failing
// `git rev-parse` surfaces as "fatal: not a git repository" rather than
// "exit status 128". When the context ends first, the context error is
// returned unchanged.
//
// # Usage
//
//	out, err := cmd.OutputContext(ctx, repoDir, "git", "branch", "-r")
//
//	res, err := cmd.Shell(ctx, cmd.Options{Dir: dir, Timeout: 5 * time.Second}, "fd --version")
//	if err != nil {
//	    var ee *cmd.Error
//	    errors.As(err, &ee) // ee.Stderr, ee.Command
//	}
//
// Every invocation is echoed through the context logger in verbose mode.
package cmd
