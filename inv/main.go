// Command inv values a portfolio of stocks and funds from a broker transaction export.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/invest/cmd"
	"github.com/google/subcommands"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell for completion.
	cmd.Completion(cmd.Commands...).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
