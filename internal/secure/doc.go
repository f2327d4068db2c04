// Package secure keeps resolved credentials in memguard enclaves.
//
// A Buffer holds plaintext encrypted at rest (XSalsa20Poly1305) in locked,
// guard-paged memory. Plaintext only exists while a caller holds an opened
// memguard.LockedBuffer or runs inside With.
//
//	buf := secure.NewBuffer(plaintext) // plaintext is wiped
//	defer buf.Destroy()
//
//	err := buf.With(func(b []byte) error {
//	    return use(b)
//	})
//
// Memory locking depends on the platform (RLIMIT_MEMLOCK on Linux,
// VirtualLock on Windows). Callers should defer memguard.Purge() in main
// so that every enclave key is wiped at exit.
//
// Buffers do not protect against attackers with access to the running
// process or hardware-level attacks.
package secure
