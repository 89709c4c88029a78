package core

import "fmt"

// NetworkError reports a download that could not complete: unreachable
// host, non-2xx status or truncated transfer.
type NetworkError struct {
	Arch string
	URL  string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("download of %s bundle from %s failed: %v", e.Arch, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ExtractionError reports an archive that is invalid or could not be written out
type ExtractionError struct {
	Arch    string
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %s bundle %s failed: %v", e.Arch, e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// InstallError reports a failure to move the extracted bundle into place
type InstallError struct {
	Arch        string
	Destination string
	Err         error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installation of %s bundle into %s failed: %v", e.Arch, e.Destination, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
