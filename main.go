package main

import (
	"os"

	"github.com/devflowhq/devflow/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
