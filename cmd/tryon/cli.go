package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mhpenta/tryon"
	"github.com/mhpenta/tryon/normalizer"
	"github.com/mhpenta/tryon/ratelimiter"
)

// deps are the collaborators the commands are built from.
type deps struct {
	newGenerator func(ctx context.Context) (tryon.Generator, error)
	limiter      ratelimiter.Limiter
	logger       *slog.Logger
	stdout       io.Writer
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d deps) *cli.App {
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.stdout == nil {
		d.stdout = os.Stdout
	}

	app := &cli.App{
		Name:    "tryon",
		Usage:   "Dress the person in one photo in the garment from another",
		Version: Version,
		Writer:  d.stdout,
		Commands: []*cli.Command{
			generateCmd(d),
			prepareCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// generateCmd creates the generate command.
func generateCmd(d deps) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a photo of the person wearing the outfit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "person", Aliases: []string{"p"}, Required: true, Usage: "Photo of the person"},
			&cli.StringFlag{Name: "outfit", Aliases: []string{"o"}, Required: true, Usage: "Photo of the garment"},
			&cli.IntFlag{Name: "person-rotate", Usage: "Clockwise quarter-turns applied to the person photo (negative for counter-clockwise)"},
			&cli.IntFlag{Name: "outfit-rotate", Usage: "Clockwise quarter-turns applied to the outfit photo (negative for counter-clockwise)"},
			&cli.StringFlag{Name: "out", Value: ".", Usage: "Directory for the generated photo"},
			&cli.StringFlag{Name: "name", Value: "tryon", Usage: "File name (without extension) of the generated photo"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context

			personFile, err := normalizer.OpenFile(c.String("person"))
			if err != nil {
				return err
			}
			outfitFile, err := normalizer.OpenFile(c.String("outfit"))
			if err != nil {
				return err
			}

			gen, err := d.newGenerator(ctx)
			if err != nil {
				return err
			}
			orch := tryon.NewOrchestrator(gen,
				tryon.WithLogger(d.logger),
				tryon.WithRateLimiter(d.limiter),
			)
			defer orch.Close()

			previews := normalizer.NewPreviewRegistry()
			personSlot := normalizer.NewSlot("person",
				normalizer.WithSubscriber(orch.SetPerson),
				normalizer.WithPreviewRegistry(previews),
				normalizer.WithSlotLogger(d.logger),
			)
			defer personSlot.Close()
			outfitSlot := normalizer.NewSlot("outfit",
				normalizer.WithSubscriber(orch.SetOutfit),
				normalizer.WithPreviewRegistry(previews),
				normalizer.WithSlotLogger(d.logger),
			)
			defer outfitSlot.Close()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return fillSlot(gctx, personSlot, personFile, c.Int("person-rotate"))
			})
			g.Go(func() error {
				return fillSlot(gctx, outfitSlot, outfitFile, c.Int("outfit-rotate"))
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if !orch.Generate(ctx) {
				return errors.New("both photos must be prepared before generating")
			}
			state := orch.State()
			if state.Err != nil {
				return state.Err
			}

			saved, err := tryon.SaveToStorage(ctx, tryon.DirStorage{Root: c.String("out")}, state.Result, c.String("name"))
			if err != nil {
				return fmt.Errorf("saving result: %w", err)
			}

			fmt.Fprintf(d.stdout, "saved: %s\n", saved.Location)
			if state.Result.HasText() {
				fmt.Fprintf(d.stdout, "comment: %s\n", state.Result.Text)
			}
			return nil
		},
	}
}

// prepareCmd creates the prepare command.
func prepareCmd(d deps) *cli.Command {
	return &cli.Command{
		Name:  "prepare",
		Usage: "Normalize a single photo (rotate and re-encode) without generating",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Required: true, Usage: "Source photo"},
			&cli.IntFlag{Name: "rotate", Aliases: []string{"r"}, Usage: "Clockwise quarter-turns (negative for counter-clockwise)"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "Output file"},
		},
		Action: func(c *cli.Context) error {
			f, err := normalizer.OpenFile(c.String("in"))
			if err != nil {
				return err
			}

			prepared, err := normalizer.Prepare(c.Context, f, c.Int("rotate"))
			if err != nil {
				return err
			}
			data, err := prepared.Bytes()
			if err != nil {
				return err
			}

			if err := os.WriteFile(c.String("out"), data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", c.String("out"), err)
			}

			d.logger.Debug("photo prepared",
				"in", c.String("in"),
				"out", c.String("out"),
				"mime", prepared.MIMEType,
			)
			fmt.Fprintf(d.stdout, "%s (%s)\n", c.String("out"), prepared.MIMEType)
			return nil
		},
	}
}

// fillSlot selects f into slot and applies the requested quarter-turns using
// the fewest single-step rotations.
func fillSlot(ctx context.Context, slot *normalizer.Slot, f normalizer.File, quarters int) error {
	if err := slot.Select(ctx, f); err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	dir, steps := normalizer.Right, normalizer.NormalizeQuarters(quarters)
	if steps == 3 {
		dir, steps = normalizer.Left, 1
	}
	for range steps {
		if err := slot.Rotate(ctx, dir); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}
