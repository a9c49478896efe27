// Command kdforest generates a k-d forest based color-cube image.
package main

import (
	"os"

	"github.com/kdforest/kdforest/pkg/cli"
	"github.com/kdforest/kdforest/pkg/pngenc"
)

func main() {
	code := cli.RunCLI(os.Args[1:])
	pngenc.Terminate()
	os.Exit(code)
}
