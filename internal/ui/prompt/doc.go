// Package prompt provides interactive prompts rendered on stderr.
//
//   - [Confirm]: Yes/No confirmation
//   - [BranchInput]: branch name input with validation
//   - [Pick]: filterable list of labelled choices
//
// [Interactive] reports whether prompts can be shown at all.
package prompt
