//go:build linux

package sysproxy

import (
	"os/exec"
	"strconv"

	"github.com/AdguardTeam/golibs/log"
)

func configure(httpPort int) Result {
	port := strconv.Itoa(httpPort)
	commands := [][]string{
		{"set", "org.gnome.system.proxy", "mode", "manual"},
		{"set", "org.gnome.system.proxy.http", "host", "127.0.0.1"},
		{"set", "org.gnome.system.proxy.http", "port", port},
		{"set", "org.gnome.system.proxy.https", "host", "127.0.0.1"},
		{"set", "org.gnome.system.proxy.https", "port", port},
	}
	for _, args := range commands {
		if err := exec.Command("gsettings", args...).Run(); err != nil {
			log.Error("sysproxy: gsettings %v: %s", args, err)
			return Result{}
		}
	}
	return Result{Success: true, ServiceName: "gsettings"}
}

func unconfigure(string) Result {
	if err := exec.Command("gsettings", "set", "org.gnome.system.proxy", "mode", "none").Run(); err != nil {
		log.Error("sysproxy: %s", err)
		return Result{}
	}
	return Result{Success: true}
}
