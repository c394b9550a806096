// Package sysproxy configures and restores the OS-level HTTP/HTTPS proxy
// setting, platform by platform. Grounded on system_proxy.rs.
package sysproxy

// Result mirrors system_proxy.rs's ProxyConfigResult.
type Result struct {
	Success     bool
	ServiceName string
}

// Configure points the OS proxy setting at 127.0.0.1:httpPort. Idempotent:
// calling it twice just re-applies the same configuration.
func Configure(httpPort int) Result {
	return configure(httpPort)
}

// Unconfigure reverses Configure. serviceName is the value recorded by a
// prior Configure call (settings.RecordSystemProxy). On macOS the named
// service, if any, is disabled first and then the proxy is disabled on
// every listed service regardless, matching system_proxy.rs's safety
// behavior; on Linux and Windows serviceName is ignored.
func Unconfigure(serviceName string) Result {
	return unconfigure(serviceName)
}
