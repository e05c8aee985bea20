// Example: compose a workflow programmatically, validate it and print the
// portable export document.
package main

import (
	"fmt"
	"os"

	"github.com/avi3tal/flowforge/internal/builder"
	"github.com/avi3tal/flowforge/internal/document"
)

func main() {
	w := builder.NewWorkflow("Order triage", builder.WithDescription("Route incoming orders"))

	start := w.AddNode(builder.KindStart, builder.Position{X: 40, Y: 200})
	check := w.AddNode(builder.KindCondition, builder.Position{X: 300, Y: 200})
	process := w.AddNode(builder.KindAction, builder.Position{X: 560, Y: 120})
	wait := w.AddNode(builder.KindDelay, builder.Position{X: 560, Y: 280})
	end := w.AddNode(builder.KindEnd, builder.Position{X: 820, Y: 200})

	must(w.UpdateConfig(check.ID, builder.ConditionConfig{Expression: "order.total > 100"}))
	must(w.UpdateConfig(process.ID, builder.ActionConfig{Instructions: "flag for manual review"}))
	must(w.UpdateConfig(wait.ID, builder.DelayConfig{Seconds: 60}))

	connect(w, start.ID, "output", check.ID, "input")
	connect(w, check.ID, "true", process.ID, "input")
	connect(w, check.ID, "false", wait.ID, "input")
	connect(w, process.ID, "success", end.ID, "input")
	connect(w, wait.ID, "output", end.ID, "input")

	if errs := builder.Validate(w); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}

	data, err := document.Marshal(document.Export(w))
	must(err)
	fmt.Println(string(data))
}

func connect(w *builder.Workflow, fromID string, fromPort builder.Port, toID string, toPort builder.Port) {
	_, err := w.Connect(fromID, fromPort, toID, toPort)
	must(err)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
