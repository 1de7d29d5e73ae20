package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"portfolio-generator/internal/bootstrap"
	"portfolio-generator/internal/config"
	"portfolio-generator/internal/logger"
	"portfolio-generator/internal/model"
	"portfolio-generator/internal/render"
	"portfolio-generator/internal/usecase"

	"github.com/spf13/cobra"
)

var errLintFailed = errors.New("template has diagnostics")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio",
		Short:         "Render portfolio and resume templates from a profile",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("templates", "", "load templates from this directory instead of the configured source")
	root.PersistentFlags().Bool("verbose", false, "log to stderr")

	root.AddCommand(newRenderCmd(), newBundleCmd(), newPDFCmd(), newLintCmd(), newTemplatesCmd())
	return root
}

// env holds what a command needs; built from the environment and flags.
type env struct {
	processor *usecase.Processor
	log       *logger.Logger
	close     func()
}

func newEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("templates"); dir != "" {
		cfg.TemplateSource = "dir"
		cfg.TemplateDir = dir
	}

	log := logger.Nop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if log, err = logger.New(cfg.LogMode); err != nil {
			return nil, err
		}
	}

	store, closeStore, err := bootstrap.TemplateStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	return &env{
		processor: bootstrap.Processor(cfg, store, bootstrap.Converter(cfg), storage, log),
		log:       log,
		close: func() {
			storage.Close()
			_ = closeStore()
			log.Sync()
		},
	}, nil
}

func requestFromFlags(cmd *cobra.Command) (usecase.Request, error) {
	name, _ := cmd.Flags().GetString("template")
	path, _ := cmd.Flags().GetString("profile")
	req := usecase.Request{Template: name}
	if path != "" {
		p, err := model.LoadProfile(path)
		if err != nil {
			return req, err
		}
		req.Profile = p
	}
	return req, nil
}

// writeOutput writes to path, or to w when path is "" or "-".
func writeOutput(w io.Writer, path string, b []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func addRenderFlags(cmd *cobra.Command, outRequired bool) {
	cmd.Flags().String("template", usecase.DefaultTemplate, "template name")
	cmd.Flags().String("profile", "", "profile file (.json, .yaml or .yml)")
	cmd.Flags().String("out", "", "output file")
	if outRequired {
		_ = cmd.MarkFlagRequired("out")
	}
}

type artifactFunc func(p *usecase.Processor, ctx context.Context, req usecase.Request) (*usecase.Artifact, error)

func runArtifact(cmd *cobra.Command, build artifactFunc) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	a, err := build(e.processor, cmd.Context(), req)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if err := writeOutput(cmd.OutOrStdout(), out, a.Body); err != nil {
		return err
	}
	if out != "" && out != "-" {
		msg := fmt.Sprintf("wrote %s (%d bytes", out, len(a.Body))
		if a.PageCount > 0 {
			msg += fmt.Sprintf(", %d pages", a.PageCount)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), msg+")")
	}
	return nil
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template to HTML",
		Long: `Render a template to HTML.

Examples:
  folio render --template modern --profile ada.yaml
  folio render --template classic --profile ada.json --preview --out index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if preview, _ := cmd.Flags().GetBool("preview"); preview {
				return runArtifact(cmd, (*usecase.Processor).Preview)
			}
			return runArtifact(cmd, func(p *usecase.Processor, ctx context.Context, req usecase.Request) (*usecase.Artifact, error) {
				r, err := p.Render(ctx, req)
				if err != nil {
					return nil, err
				}
				return &usecase.Artifact{Body: []byte(r.HTML)}, nil
			})
		},
	}
	addRenderFlags(cmd, false)
	cmd.Flags().Bool("preview", false, "wrap the output in a standalone page with inline styles")
	return cmd
}

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Render a template into a ZIP with index.html and styles.css",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifact(cmd, (*usecase.Processor).Download)
		},
	}
	addRenderFlags(cmd, true)
	return cmd
}

func newPDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Render a template and convert it to PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifact(cmd, (*usecase.Processor).PDF)
		},
	}
	addRenderFlags(cmd, true)
	return cmd
}

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Report unknown placeholders and unbalanced tags",
		Long: `Report unknown placeholders and unbalanced tags.

Examples:
  folio lint --template modern
  folio lint --file ./my-theme/template.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("template")
			file, _ := cmd.Flags().GetString("file")
			if (name == "") == (file == "") {
				return fmt.Errorf("exactly one of --template or --file is required")
			}

			var (
				diags []render.Diagnostic
				label = file
			)
			if file != "" {
				src, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading template: %w", err)
				}
				diags = render.Parse(string(src)).Diagnostics
			} else {
				e, err := newEnv(cmd)
				if err != nil {
					return err
				}
				defer e.close()
				if diags, err = e.processor.Lint(cmd.Context(), name); err != nil {
					return err
				}
				label = name
			}

			w := cmd.OutOrStdout()
			for _, d := range diags {
				fmt.Fprintf(w, "%s:%d: %s\n", label, d.Line, d.Message)
			}
			if len(diags) > 0 {
				return fmt.Errorf("%w: %d found", errLintFailed, len(diags))
			}
			fmt.Fprintf(w, "%s: ok\n", label)
			return nil
		},
	}
	cmd.Flags().String("template", "", "template name")
	cmd.Flags().String("file", "", "template file")
	return cmd
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			names, err := e.processor.Templates(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}
}
