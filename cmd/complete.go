package cmd

import (
	"flag"
	"strings"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the application commands and
// their flags.
func Completion(commands ...subcommands.Command) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: make(map[string]complete.Predictor),
	}
	flag.CommandLine.VisitAll(func(f *flag.Flag) { root.Flags[f.Name] = predictFlag(f) })

	for _, c := range commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: make(map[string]complete.Predictor)}
		fs.VisitAll(func(f *flag.Flag) { sub.Flags[f.Name] = predictFlag(f) })
		root.Sub[c.Name()] = sub
	}
	return root
}

// predictFlag predicts files for file flags, nothing for booleans, and anything otherwise.
func predictFlag(f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	if f.Name == "f" || f.Name == "config" || strings.Contains(strings.ToLower(f.Usage), "file") {
		return predict.Files("*")
	}
	return predict.Something
}
