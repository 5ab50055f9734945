package main

import "github.com/mj1618/a11y-audit/cmd"

func main() {
	cmd.Execute()
}
