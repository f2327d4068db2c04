//go:build !secstream_nocommand

package capability

func init() { register(Command) }
