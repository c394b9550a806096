//go:build darwin

package sysproxy

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/log"
)

var preferredServices = []string{"Wi-Fi", "Ethernet", "USB 10/100/1000 LAN", "Thunderbolt Bridge"}

func configure(httpPort int) Result {
	services, err := listNetworkServices()
	if err != nil {
		log.Error("sysproxy: listing network services: %s", err)
		return Result{}
	}

	for _, want := range preferredServices {
		for _, svc := range services {
			if strings.Contains(svc, want) {
				if setProxy(svc, httpPort) {
					return Result{Success: true, ServiceName: svc}
				}
			}
		}
	}

	if len(services) > 0 && setProxy(services[0], httpPort) {
		return Result{Success: true, ServiceName: services[0]}
	}
	return Result{}
}

func unconfigure(serviceName string) Result {
	if serviceName != "" {
		disableProxy(serviceName)
	}

	services, err := listNetworkServices()
	if err != nil {
		return Result{Success: serviceName != ""}
	}
	for _, svc := range services {
		disableProxy(svc)
	}
	return Result{Success: true}
}

func listNetworkServices() ([]string, error) {
	out, err := exec.Command("networksetup", "-listallnetworkservices").Output()
	if err != nil {
		return nil, err
	}

	var services []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "*") {
			continue
		}
		services = append(services, line)
	}
	return services, nil
}

func setProxy(service string, httpPort int) bool {
	port := strconv.Itoa(httpPort)
	commands := [][]string{
		{"-setwebproxy", service, "127.0.0.1", port},
		{"-setsecurewebproxy", service, "127.0.0.1", port},
		{"-setwebproxystate", service, "on"},
		{"-setsecurewebproxystate", service, "on"},
	}
	for _, args := range commands {
		if err := exec.Command("networksetup", args...).Run(); err != nil {
			log.Error("sysproxy: networksetup %v: %s", args, err)
			return false
		}
	}
	return true
}

func disableProxy(service string) {
	exec.Command("networksetup", "-setwebproxystate", service, "off").Run()
	exec.Command("networksetup", "-setsecurewebproxystate", service, "off").Run()
}
