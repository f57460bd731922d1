// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duoscience/duoscience-go/render"
)

var (
	flagCSS    string
	flagStyle  string
	flagLogo   string
	flagPDFOut string
	flagWkPath string
)

var convertCmd = &cobra.Command{
	Use:   "convert <report.md>",
	Short: "Convert a markdown report to PDF",
	Long: `Renders a markdown report (as produced by research tasks) to a styled
PDF. Requires the wkhtmltopdf binary to be installed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		out := flagPDFOut
		if out == "" {
			out = strings.TrimSuffix(src, ".md") + ".pdf"
			if out == src {
				out = src + ".pdf"
			}
		}

		opts := render.Options{
			CSSPath:         flagCSS,
			HighlightStyle:  flagStyle,
			LogoPath:        flagLogo,
			WkhtmltopdfPath: flagWkPath,
		}
		if err := render.ConvertFile(cmd.Context(), src, out, opts); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&flagPDFOut, "output", "o", "", "output PDF path (defaults to the input with a .pdf extension)")
	convertCmd.Flags().StringVar(&flagCSS, "css", "", "path to an extra CSS file")
	convertCmd.Flags().StringVar(&flagStyle, "style", render.DefaultHighlightStyle, "chroma style for code highlighting")
	convertCmd.Flags().StringVar(&flagLogo, "logo", "", "path to a logo image embedded in the header")
	convertCmd.Flags().StringVar(&flagWkPath, "wkhtmltopdf", "", "path to the wkhtmltopdf binary")

	rootCmd.AddCommand(convertCmd)
}
