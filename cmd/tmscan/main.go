package main

import (
	"github.com/guorui-lawtech/tmscan/pkg/cli"
)

func main() {
	cli.Execute()
}
