// Command erode is a thin CLI driver over the geomorph erosion pipeline.
package main

import "geomorph/internal/cli"

func main() {
	cli.Execute()
}
