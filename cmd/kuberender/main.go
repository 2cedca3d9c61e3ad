package main

import "github.com/cameronsjo/kuberender/internal/cmd"

func main() {
	cmd.Execute()
}
