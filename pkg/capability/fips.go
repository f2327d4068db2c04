//go:build !secstream_nofips

package capability

func init() { register(FIPSTLS) }
