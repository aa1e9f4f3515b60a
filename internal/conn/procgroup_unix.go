//go:build unix

package conn

import "syscall"

func sysProcAttrNewGroup() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killGroup signals the whole process group rooted at pid, so any
// terminals or subprocesses the agent spawned die with it.
func killGroup(pid int, sig syscall.Signal) {
	_ = syscall.Kill(-pid, sig)
}
