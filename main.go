package main

import (
	"fmt"
	"os"

	"github.com/apiarycd/svndesk/internal/commands"
)

func main() {
	if err := commands.New().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
