package main

import "github.com/tku137/gitlab-sprint-stats/cmd"

func main() {
	cmd.Execute()
}
