package adapter

import (
	"errors"
	"fmt"

	m "livesort.dev/pkg/livesort/internal/model"
)

// CrossDeviceError reports a rename that failed because source and target are
// on different filesystems. Files are never copied and deleted implicitly.
type CrossDeviceError struct {
	Src m.Path
	Dst m.Path
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device move %q -> %q: source and target must share a filesystem: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}
