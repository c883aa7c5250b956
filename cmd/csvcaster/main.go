// Command csvcaster writes records as CSV and drafts mapping files for Go
// struct types.
package main

import (
	"csvcaster/cmd/csvcaster/cmd"
)

func main() {
	cmd.Execute()
}
