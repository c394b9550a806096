//go:build windows

package sysproxy

import (
	"fmt"
	"os/exec"

	"github.com/AdguardTeam/golibs/log"
)

func configure(httpPort int) Result {
	cmd := fmt.Sprintf(`netsh winhttp set proxy proxy-server="127.0.0.1:%d"`, httpPort)
	if err := exec.Command("cmd", "/c", cmd).Run(); err != nil {
		log.Error("sysproxy: %s", err)
		return Result{}
	}
	return Result{Success: true, ServiceName: "winhttp"}
}

func unconfigure(string) Result {
	if err := exec.Command("cmd", "/c", "netsh winhttp reset proxy").Run(); err != nil {
		log.Error("sysproxy: %s", err)
		return Result{}
	}
	return Result{Success: true}
}
