package main

import "github.com/fulmenhq/readmesync/cmd"

func main() {
	cmd.Execute()
}
