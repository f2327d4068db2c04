//go:build !secstream_noutls

package capability

func init() { register(UTLS) }
