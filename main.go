// Command corebridge runs the tunnel client supervisor, proxy bridge, DNS
// diagnostics engine, and their admin HTTP surface as a single process.
package main

import "github.com/streamgate/corebridge/internal/cmd"

func main() {
	cmd.Main()
}
