package main

import (
	_ "embed"

	"github.com/haierkeys/content-hub-service/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}
