package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeusync/scenekit/internal/core/assets/library"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/injector"
)

func newLoadCmd(root *rootOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "load <scene.json>",
		Short: "Load a scene and print its entities and transform tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tk := injector.InitializeToolkit(root.cfg)
			defer func() { _ = tk.Logger.Sync() }()

			_, _ = tk.Bus.Subscribe(bus.ParentLinked, func(e bus.Event) error {
				d := e.Data().(bus.ParentLinkedData)
				tk.Logger.Debug("linked", log.String("child", d.Child), log.String("parent", d.Parent))
				return nil
			})

			res, err := tk.Loader.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printEntities(out, tk, res)
			printTree(out, scene.BuildTree(tk.Store))

			stats := tk.Cache.Stats()
			fmt.Fprintf(out, "decoded: %d geometries, %d textures, %d materials\n",
				stats.Decodes[library.KindGeometry], stats.Decodes[library.KindTexture], stats.Decodes[library.KindMaterial])
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range res.Errors {
				fmt.Fprintf(out, "error: %v\n", e)
			}
			if strict {
				return res.Err()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any entity or link failed")
	return cmd
}

func printEntities(out io.Writer, tk *injector.Toolkit, res *scene.Result) {
	fmt.Fprintf(out, "session %s: %d entities\n", res.Session, len(res.Entities))
	for _, id := range res.Entities {
		e, err := tk.Store.Entity(id)
		if err != nil {
			continue
		}
		kinds := make([]string, 0, len(e.Components))
		for _, k := range e.Kinds() {
			kinds = append(kinds, k.String())
		}
		fmt.Fprintf(out, "  #%d %q [%s]\n", e.ID, e.Name, strings.Join(kinds, " "))
	}
}

func printTree(out io.Writer, roots []*scene.Node) {
	fmt.Fprintln(out, "hierarchy:")
	for _, r := range roots {
		r.Walk(func(n *scene.Node, depth int) bool {
			fmt.Fprintf(out, "  %s%s (transform %d)\n", strings.Repeat("  ", depth), n.Name, n.Transform)
			return true
		})
	}
}
