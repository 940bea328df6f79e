package main

import (
	"fmt"
	"os"

	"github.com/mm-go/verifier/cmd/mmverify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
