// Command pythinfer merges RDF projects and drives inference to a fixed
// point.
package main

import (
	"github.com/robertmuil/pythinfer/internal/cli"
)

func main() {
	cli.Execute()
}
