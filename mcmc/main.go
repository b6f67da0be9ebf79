package main

import (
	"github.com/APanico12/MCMC/mcmc/cmd"
)

func main() {
	cmd.Execute()
}
