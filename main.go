// The main package for the recipecrawler executable.
package main

import (
	"github.com/JakeFAU/recipe-graph-crawler/cmd"
)

func main() {
	cmd.Execute()
}
