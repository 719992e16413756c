package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/felixgeelhaar/memlog/cmd/memlog/cli"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), cli.NewRootCmd(version)); err != nil {
		os.Exit(1)
	}
}
