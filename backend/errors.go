package backend

import "fmt"

// Step names the stage of an operation that produced a failure. Callers
// branch on the step to decide remediation; canopy never retries internally.
type Step string

const (
	StepLocalOpen   Step = "local_open"
	StepRemoteOpen  Step = "remote_open"
	StepRead        Step = "read"
	StepWrite       Step = "write"
	StepRemoteClose Step = "remote_close"
	StepLocalClose  Step = "local_close"
	StepMakeDir     Step = "make_dir"
	StepFileInfo    Step = "file_info"
	StepListDir     Step = "list_dir"
	StepRemove      Step = "remove"
)

// StepError wraps the underlying cause of the first failed step of a
// sequential operation. The remaining steps of that operation were not
// attempted.
type StepError struct {
	Step Step
	Path string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Path, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// TypeError reports that a path exists but has the wrong entry type for the
// requested operation, e.g. a regular file where a directory is required.
// Symlinks are never treated as directories, even when their target is one.
type TypeError struct {
	Path string
	Type EntryType
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type at %s: %s", e.Path, e.Type)
}

// AccessError reports that a path exists with the right type but the
// operating principal lacks the access the operation needs.
type AccessError struct {
	Path   string
	Access Access
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("invalid access at %s: %s", e.Path, e.Access)
}
