package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	ink "github.com/inkward/ink"
)

func main() {
	app := &cli.App{
		Name:  "ink",
		Usage: "Run and inspect ink stories built with the demo story builder",
		Commands: []*cli.Command{
			&runCmd,
			&snapshotCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var runCmd = cli.Command{
	Name:  "run",
	Usage: "Play the bundled demo story interactively",
	Flags: []cli.Flag{
		&cli.Int64Flag{Name: "seed", Usage: "deterministic RNG seed", Value: 0},
	},
	Action: func(c *cli.Context) error {
		engine := buildDemoEngine(c.Int64("seed"))
		return playLoop(engine)
	},
}

var snapshotCmd = cli.Command{
	Name:      "snapshot",
	Usage:     "Run the demo story to its first choice point and write a snapshot to a file",
	ArgsUsage: "<output-file>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.Exit("expected exactly one output file argument", 1)
		}
		engine := buildDemoEngine(0)
		for engine.CanContinue() {
			text, err := engine.Continue()
			if err != nil {
				return err
			}
			fmt.Print(text)
			if len(engine.VisibleChoices()) > 0 {
				break
			}
		}
		data, err := engine.Snapshot()
		if err != nil {
			return err
		}
		return os.WriteFile(c.Args().First(), data, 0644)
	},
}

func playLoop(engine *ink.Engine) error {
	reader := bufio.NewReader(os.Stdin)
	for {
		for engine.CanContinue() {
			text, err := engine.Continue()
			if err != nil {
				return err
			}
			fmt.Print(text)
			for _, tag := range engine.CurrentTags() {
				fmt.Printf("# %s\n", tag)
			}
		}

		choices := engine.VisibleChoices()
		if len(choices) == 0 {
			log.Println("story ended")
			return nil
		}

		for i, choice := range choices {
			fmt.Printf("%d: %s\n", i+1, choice.Text)
		}
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		idx, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || idx < 1 || idx > len(choices) {
			fmt.Println("invalid choice")
			continue
		}
		if err := engine.ChooseChoiceIndex(idx - 1); err != nil {
			return err
		}
	}
}

// buildDemoEngine assembles a tiny branching story directly through the
// Go-native content-graph builder API (spec.md's deserializer is out of
// scope, so this stands in for a compiled-story loader).
func buildDemoEngine(seed int64) *ink.Engine {
	root := ink.NewContainer("root")

	crossroads := ink.NewContainer("crossroads")
	crossroads.VisitsShouldBeCounted = true
	crossroads.AddContent(
		ink.NewValueObject(ink.StringValue("You stand at a crossroads.\n")),
	)

	goNorth := ink.NewContainer("go_north")
	goNorth.AddContent(
		ink.NewValueObject(ink.StringValue("You walk north into the forest.\n")),
		ink.NewControlCommand(ink.CmdEnd),
	)

	goSouth := ink.NewContainer("go_south")
	goSouth.AddContent(
		ink.NewValueObject(ink.StringValue("You walk south to the village.\n")),
		ink.NewControlCommand(ink.CmdEnd),
	)

	crossroads.AddContent(
		ink.NewControlCommand(ink.CmdEvalStart),
		ink.NewValueObject(ink.StringValue("Head north")),
		ink.NewControlCommand(ink.CmdEvalEnd),
		&ink.ChoicePoint{
			PathOnChoice:    ink.NewRelativePath(ink.ParentComponent, ink.NameComponent("go_north")),
			HasStartContent: true,
		},
		ink.NewControlCommand(ink.CmdEvalStart),
		ink.NewValueObject(ink.StringValue("Head south")),
		ink.NewControlCommand(ink.CmdEvalEnd),
		&ink.ChoicePoint{
			PathOnChoice:    ink.NewRelativePath(ink.ParentComponent, ink.NameComponent("go_south")),
			HasStartContent: true,
		},
		ink.NewControlCommand(ink.CmdDone),
	)

	root.AddContent(crossroads, goNorth, goSouth)

	return ink.NewEngine(root, ink.NewListDefinitions(), nil, ink.NewConfig(), seed)
}
