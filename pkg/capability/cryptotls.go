//go:build !secstream_nocryptotls

package capability

func init() { register(CryptoTLS) }
