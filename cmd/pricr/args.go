package main

import (
	"strings"

	"github.com/urfave/cli/v2"
)

// flagsFirst moves flags (and the values they take) ahead of positional
// arguments so "pricr btc eth --json" parses like "pricr --json btc eth".
// Everything after a bare "--" stays positional.
func flagsFirst(flags []cli.Flag, args []string) []string {
	if len(args) == 0 {
		return args
	}
	takesValue := make(map[string]bool)
	for _, f := range flags {
		_, isBool := f.(*cli.BoolFlag)
		for _, name := range f.Names() {
			takesValue[name] = !isBool
		}
	}

	head := []string{args[0]}
	var (
		positional []string
		trailing   []string
	)
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if a == "--" {
			trailing = rest[i:]
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		head = append(head, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if !takesValue[name] && !strings.HasPrefix(a, "--") && len(name) > 1 {
			// combined short flags such as -vp: the last one may take a value
			name = name[len(name)-1:]
		}
		if takesValue[name] && i+1 < len(rest) {
			i++
			head = append(head, rest[i])
		}
	}
	if len(trailing) > 0 {
		head = append(head, "--")
		head = append(head, positional...)
		return append(head, trailing[1:]...)
	}
	return append(head, positional...)
}
