package main

import (
	"os"

	"github.com/AlfredBerg/job-crawler/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
