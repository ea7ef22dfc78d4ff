// Command xdvdfsgo packs and unpacks XDVDFS (Xbox XISO) images.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/charlesthegreat77/xdvdfs-go/blockdev"
	"github.com/charlesthegreat77/xdvdfs-go/imgspec"
	"github.com/charlesthegreat77/xdvdfs-go/pathrewrite"
	"github.com/charlesthegreat77/xdvdfs-go/xdvdfs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("xdvdfsgo: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xdvdfsgo",
		Short: "Pack and unpack Xbox XDVDFS (XISO) images",
	}
	root.AddCommand(newPackCmd(), newUnpackCmd())
	return root
}

func newPackCmd() *cobra.Command {
	var specPath string
	var sourceDir string
	var outputPath string
	var ruleArgs []string

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build an XDVDFS image from a source directory or image spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc *imgspec.Document
			var err error

			switch {
			case specPath != "":
				doc, err = imgspec.Load(specPath)
				if err != nil {
					return err
				}
			case len(ruleArgs) > 0:
				rules := make([]pathrewrite.Rule, len(ruleArgs))
				for i, a := range ruleArgs {
					rules[i], err = imgspec.ParseRuleArg(a)
					if err != nil {
						return err
					}
				}
				doc = imgspec.New(outputPath, rules, ".")
			default:
				doc = imgspec.New(outputPath, []pathrewrite.Rule{{Pattern: "**", Template: "{0}"}}, ".")
			}
			if sourceDir == "" {
				sourceDir = doc.BaseDir
			}
			if outputPath == "" {
				outputPath = doc.ResolveOutput()
			}
			if outputPath == "" || sourceDir == "" {
				return fmt.Errorf("pack: need --source and --output (or --spec)")
			}

			engine, err := doc.Engine()
			if err != nil {
				return err
			}

			hostFiles, err := xdvdfs.WalkHostDir(sourceDir)
			if err != nil {
				return fmt.Errorf("scanning %q: %w", sourceDir, err)
			}
			hostPaths := make([]string, len(hostFiles))
			byPath := make(map[string]xdvdfs.SourceFile, len(hostFiles))
			for i, f := range hostFiles {
				hostPaths[i] = f.ImagePath
				byPath[f.ImagePath] = f
			}

			mapped, err := engine.RewriteAll(hostPaths)
			if err != nil {
				return err
			}
			var files []xdvdfs.SourceFile
			for _, m := range mapped {
				f := byPath[m.HostPath]
				f.ImagePath = m.ImagePath
				files = append(files, f)
			}

			dev, err := blockdev.OpenFileDevice(outputPath, true)
			if err != nil {
				return err
			}
			defer dev.Close()

			progress := xdvdfs.ProgressFunc(func(e xdvdfs.ProgressEvent) {
				if e.Kind == xdvdfs.Wrote {
					log.Printf("wrote %s (%d bytes)", e.Path, e.SizeBytes)
				}
			})
			if err := xdvdfs.Pack(dev, files, xdvdfs.PackOptions{Progress: progress}); err != nil {
				return err
			}
			log.Printf("packed %d files into %s", len(files), outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&specPath, "spec", "s", "", "path to an image spec YAML file")
	cmd.Flags().StringVarP(&sourceDir, "source", "i", "", "source directory (overrides the spec's base directory)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output image path (overrides the spec's metadata.output)")
	cmd.Flags().StringArrayVarP(&ruleArgs, "map", "m", nil, `ordered rewrite rule, "glob=template" to include or "!glob" to exclude (repeatable; ignored when --spec is set)`)
	return cmd
}

func newUnpackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack <image> <destination>",
		Short: "Extract every file from an XDVDFS image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, destDir := args[0], args[1]

			dev, err := blockdev.OpenFileDevice(imagePath, false)
			if err != nil {
				return err
			}
			defer dev.Close()

			vol, err := xdvdfs.OpenVolume(dev)
			if err != nil {
				return fmt.Errorf("opening %q: %w", imagePath, err)
			}
			log.Printf("detected layout %s", vol.Layout())

			progress := xdvdfs.ProgressFunc(func(e xdvdfs.ProgressEvent) {
				log.Printf("extracted %s", e.Path)
			})
			if err := xdvdfs.Extract(vol, destDir, progress); err != nil {
				return err
			}
			return nil
		},
	}
	return cmd
}
