package capability

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	t.Parallel()

	for _, st := range List() {
		st := st
		t.Run(string(st.Name), func(t *testing.T) {
			t.Parallel()

			err := Require(st.Name)
			if st.Enabled {
				assert.NoError(t, err)
				assert.True(t, Enabled(st.Name))
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.False(t, Enabled(st.Name))
		})
	}
}

func TestRequireUnknownName(t *testing.T) {
	t.Parallel()

	err := Require(Name("smoke-signals"))
	require.Error(t, err)

	var unavailable *UnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, Name("smoke-signals"), unavailable.Name)
	assert.Empty(t, unavailable.BuildTag())
}

func TestUnavailableErrorMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("decode secret: %w", &UnavailableError{Name: Command})

	assert.EqualError(t, err, `decode secret: feature "command" is not enabled in this build`)
	assert.ErrorIs(t, err, ErrUnavailable)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "secstream_nocommand", unavailable.BuildTag())
}

func TestList(t *testing.T) {
	t.Parallel()

	list := List()
	require.Len(t, list, 5)

	names := make([]Name, 0, len(list))
	for _, st := range list {
		names = append(names, st.Name)
		assert.NotEmpty(t, st.BuildTag)
	}
	assert.Equal(t, []Name{Command, CryptoTLS, FIPSTLS, Keyring, UTLS}, names)
}
