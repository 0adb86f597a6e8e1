package main

import (
	"os"

	"github.com/jsiebens/weiboauth/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
