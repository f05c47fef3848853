package main

import (
	"fmt"
	"io"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgraster"
	"github.com/benoitkugler/oksvgrender/svgrender"
	"github.com/spf13/cobra"
)

func newHitCmd(a *app) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "hit <file.svg>",
		Short: "Print the element painted at a pixel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, opts, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			z := &svgraster.Rasterizer{Options: opts, HitTest: true}
			frame, err := z.Rasterize(cmd.Context(), doc, a.cfg.Width, a.cfg.Height)
			if frame == nil {
				return err
			}
			if err := a.check(err); err != nil {
				return err
			}
			d := frame.Dispatcher(func(svgrender.Event) error { return nil })
			printElement(cmd.OutOrStdout(), d.Target(x, y))
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "pixel abscissa")
	cmd.Flags().Float64Var(&y, "y", 0, "pixel ordinate")
	return cmd
}

// printElement writes the ancestry of e, from the root, one element per line.
func printElement(w io.Writer, e *svgdom.Element) {
	if e == nil {
		fmt.Fprintln(w, "none")
		return
	}
	var chain []*svgdom.Element
	for ; e != nil; e = e.Parent {
		chain = append(chain, e)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]
		indent := len(chain) - 1 - i
		if e.ID != "" {
			fmt.Fprintf(w, "%*s<%s id=%q>\n", 2*indent, "", e.Tag, e.ID)
		} else {
			fmt.Fprintf(w, "%*s<%s>\n", 2*indent, "", e.Tag)
		}
	}
}
