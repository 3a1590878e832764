// Command refsched shows referee assignments from the DFBnet portal.
package main

import "github.com/pfrederiksen/refsched/internal/cli"

func main() {
	cli.Execute()
}
