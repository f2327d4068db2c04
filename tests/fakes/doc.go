// Package fakes provides test doubles for the secstream runtime
// collaborators.
//
// FakeExecutor answers process spawns with canned output, FakeKeyringStore
// keeps keyring entries in memory and ScriptedRuntime answers coroutine
// requests with a fixed sequence of outcomes. Fakes are written by hand
// (not generated) to give precise control over test behavior.
//
// Usage:
//
//	exec := fakes.NewFakeExecutor()
//	exec.AddOutput("pass show work", "hunter2\n")
//	rt := &blocking.Runtime{Exec: exec, Keyring: fakes.NewFakeKeyringStore()}
//	s, _ := secret.NewCommand(process.Program("pass", "show", "work"))
//	value, err := s.GetWith(ctx, rt)
package fakes
