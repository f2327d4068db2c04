//go:build !secstream_nokeyring

package capability

func init() { register(Keyring) }
