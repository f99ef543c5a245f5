// Command mediagate serves the generative media tool to agent hosts.
package main

import "github.com/ppiankov/mediagate/internal/cli"

func main() {
	cli.Execute()
}
