package commands

import (
	"errors"
	osexec "os/exec"

	dserrors "github.com/systmms/secstream/internal/errors"
	"github.com/systmms/secstream/pkg/exec"
)

// explain wraps a backend failure with a user-facing hint. The original
// error stays reachable through Unwrap.
func explain(backend, op string, err error) error {
	var spawnErr *exec.SpawnError
	if errors.As(err, &spawnErr) && errors.Is(err, osexec.ErrNotFound) {
		return dserrors.WrapCommandNotFound(spawnErr.Command, err)
	}
	return dserrors.BackendError(backend, op, err)
}
