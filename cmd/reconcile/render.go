package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/pkg/render"
	"github.com/vango-dev/reconcile/pkg/scenario"
)

func renderCmd() *cobra.Command {
	var (
		tree   string
		pretty bool
		page   bool
	)

	cmd := &cobra.Command{
		Use:   "render <scenario.yaml>",
		Short: "Server-render a tree of a scenario",
		Long: `Render one tree of a scenario to HTML, as the server sends it before
any transition runs. Nodes hidden with show: false carry display: none.

Examples:
  reconcile render fade.yaml --tree open
  reconcile render fade.yaml --tree open --pretty
  reconcile render fade.yaml --tree open --page`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			if tree == "" {
				return fmt.Errorf("--tree is required, one of %v", f.TreeNames())
			}
			node, err := f.Tree(tree)
			if err != nil {
				return err
			}

			r := render.NewRenderer(render.RendererConfig{Pretty: pretty})
			out := cmd.OutOrStdout()
			if page {
				data := render.PageData{Body: node.Build(), Title: f.Name}
				if css := f.CSS(); css != "" {
					data.Styles = []string{css}
				}
				return r.RenderPage(out, data)
			}

			html, err := r.RenderToString(node.Build())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, html)
			return nil
		},
	}

	cmd.Flags().StringVar(&tree, "tree", "", "Name of the tree to render")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent block elements")
	cmd.Flags().BoolVar(&page, "page", false, "Render a complete page with the scenario stylesheet")

	return cmd
}
