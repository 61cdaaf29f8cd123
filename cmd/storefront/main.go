package main

import (
	"github.com/dsemenov/storefront/internal/cmd"
)

func main() {
	cmd.Execute()
}
