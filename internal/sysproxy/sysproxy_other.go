//go:build !darwin && !windows && !linux

package sysproxy

import "github.com/AdguardTeam/golibs/log"

func configure(int) Result {
	log.Warn("sysproxy: unsupported platform")
	return Result{}
}

func unconfigure(string) Result {
	return Result{}
}
