package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp()
	if err := a.run(newRootCmd(a)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
