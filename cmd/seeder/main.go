package main

import (
	"os"

	"github.com/jaennil/guide_helper/backend/seeder/internal/cli"
)

func main() {
	realMain()
}

func realMain() {
	if err := cli.BuildCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
