// Package cli 实现 isdframe 命令行：读取 ISD 序列，逐帧排版并渲染到输出目录。
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/isdframe/layout"
	"github.com/ByLCY/isdframe/renderer"
	// 渲染后端在 init 中注册自己。
	_ "github.com/ByLCY/isdframe/renderer/canvas"
	_ "github.com/ByLCY/isdframe/renderer/svg"
)

// flags 保存命令行参数；文件配置只在对应参数未显式给出时生效。
type flags struct {
	layout        string
	renderer      string
	showLayouts   bool
	showRenderers bool
	fonts         []string
	fontDirs      []string
	config        string
	out           string
	workers       int
	debug         string
	debugDOT      string
	verbose       bool
}

// Execute 运行命令行并返回错误。
func Execute(ctx context.Context) error {
	return newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           "isdframe [flags] FILE",
		Short:         "Render ISD sequences into document frames",
		Long:          "isdframe lays out every instance of an ISD sequence and writes one rendered frame per instance.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if f.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(stderr, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showLayouts || f.showRenderers {
				if f.showLayouts {
					printNames(stdout, "Layouts", layout.Names(), layout.DefaultName)
				}
				if f.showRenderers {
					printNames(stdout, "Renderers", renderer.Names(), renderer.DefaultName)
				}
				return nil
			}
			if len(args) == 0 {
				return cmd.Usage()
			}
			return run(cmd, args[0], f, stdout)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	fs := root.Flags()
	fs.StringVar(&f.layout, "layout", layout.DefaultName, "layout engine name")
	fs.StringVar(&f.renderer, "renderer", renderer.DefaultName, "renderer name")
	fs.BoolVar(&f.showLayouts, "show-layouts", false, "list available layout engines")
	fs.BoolVar(&f.showRenderers, "show-renderers", false, "list available renderers")
	fs.StringArrayVar(&f.fonts, "font", nil, "font file (repeatable)")
	fs.StringArrayVar(&f.fontDirs, "font-directory", nil, "font directory to scan (repeatable)")
	fs.StringVar(&f.config, "config", "", "TOML configuration file")
	fs.StringVarP(&f.out, "out", "o", "frames", "output directory")
	fs.IntVar(&f.workers, "workers", 1, "frames processed in parallel")
	fs.StringVar(&f.debug, "debug", "", "write the area tree of every frame as JSON to FILE")
	fs.StringVar(&f.debugDOT, "debug-dot", "", "write the first frame's area tree as SVG to FILE")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")
	return root
}
