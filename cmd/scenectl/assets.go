package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/zeusync/scenekit/internal/core/assets/binmesh"
	"github.com/zeusync/scenekit/internal/core/assets/geometry"
	"github.com/zeusync/scenekit/internal/core/assets/library"
	"github.com/zeusync/scenekit/internal/core/assets/objmesh"
	"github.com/zeusync/scenekit/internal/core/assets/tga"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/pkg/concurrent"
)

func resolve(root *rootOptions, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root.cfg.AssetRoot, path)
}

func newMeshCmd(root *rootOptions) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "mesh <path>...",
		Short: "Decode .obj or binary meshes and print their counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decode := library.DefaultDecoders(log.New(root.cfg.Level()).Named("mesh")).Mesh
			meshes, errs := concurrent.Map(cmd.Context(), args, workers,
				func(_ context.Context, path string) (*geometry.Buffers, error) {
					return decode(resolve(root, path))
				})

			out := cmd.OutOrStdout()
			for i, b := range meshes {
				fmt.Fprintf(out, "%s:\n", args[i])
				if errs[i] != nil {
					fmt.Fprintf(out, "  error: %v\n", errs[i])
					continue
				}
				fmt.Fprintf(out, "  vertices: %d\n  triangles: %d\n  indices: %d\n",
					b.VertexCount(), b.TriangleCount(), len(b.Indices))
				if lo, hi, ok := b.Bounds(); ok {
					fmt.Fprintf(out, "  bounds: %v .. %v\n", lo, hi)
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "meshes decoded at once")
	return cmd
}

func newImageCmd(root *rootOptions) *cobra.Command {
	var pngOut string
	cmd := &cobra.Command{
		Use:   "image <path.tga>",
		Short: "Decode a TGA image and print its dimensions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := tga.DecodeFile(resolve(root, args[0]))
			if err != nil {
				return err
			}
			origin := "bottom-left"
			if img.TopLeftOrigin() {
				origin = "top-left"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%dx%d, %d bpp, origin %s\n",
				img.Width, img.Height, img.BitsPerPixel, origin)
			if pngOut == "" {
				return nil
			}

			f, err := os.Create(pngOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", pngOut)
			}
			defer f.Close()
			return eris.Wrap(png.Encode(f, img.ToNRGBA()), "encode png")
		},
	}
	cmd.Flags().StringVar(&pngOut, "png", "", "also write the image as PNG to this path")
	return cmd
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in.obj> <out.bin>",
		Short: "Encode a text mesh into the chunked binary container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := objmesh.DecodeFile(resolve(root, args[0]))
			if err != nil {
				return err
			}
			f, err := os.Create(args[1])
			if err != nil {
				return eris.Wrapf(err, "create %s", args[1])
			}
			if err := binmesh.Encode(f, b); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return eris.Wrapf(err, "close %s", args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d vertices, %d indices to %s\n",
				b.VertexCount(), len(b.Indices), args[1])
			return nil
		},
	}
}
