// Command gen regenerates sp/rtuple_gen.go's RTuple1..RTupleN arity family
// from a single template, the way cmd/codegen regenerated rocket/signals.go
// and dumbdumb/signals.go from their own templates.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sacrt/psac/cmd/gen/templates"
)

const maxArityKey = "max-arity"

func main() {
	cmd := &cli.Command{
		Name:  "gen",
		Usage: "Generate sp's RTuple1..RTupleN arity family",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  maxArityKey,
				Usage: "highest RTuple arity to generate",
				Value: 4,
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("codegen for sp.RTuple started")
	defer func() { log.Printf("codegen for sp.RTuple finished in %v", time.Since(start)) }()

	maxArity := int(cmd.Uint(maxArityKey))
	contents, err := templates.RTupleGen(maxArity)
	if err != nil {
		return err
	}
	return os.WriteFile("sp/rtuple_gen.go", []byte(contents), 0644)
}
