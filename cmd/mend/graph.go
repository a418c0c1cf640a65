package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mendworks/mend/internal/pipeline"
)

var graphDot bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the pipeline's state machine",
	Long: `Print the pipeline graph: states as nodes, stage dispatches as
conditional edges. Use --dot for Graphviz output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := pipeline.NewGraph()
		if graphDot {
			fmt.Print(g.DOT())
			return nil
		}
		fmt.Print(g.ASCII())
		return nil
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphDot, "dot", false, "Emit Graphviz dot format")
}
