package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"offergen/internal/fields"
	"offergen/internal/maildraft"
	"offergen/internal/render"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "offergen",
	Short: "Offer-letter template renderer",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	templatePath string
	outPath      string

	name      string
	position  string
	salary    string
	joinDate  string
	offerDate string
	city      string
	extras    []string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fill a pptx/docx template with candidate fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		renderFn, err := render.ForFilename(templatePath)
		if err != nil {
			return err
		}

		form, err := buildForm()
		if err != nil {
			return err
		}

		out, err := renderFn(data, form.Build())
		if err != nil {
			return err
		}

		dest := outPath
		if dest == "" {
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(templatePath)), ".")
			dest = fields.Filename(name, ext)
		}
		if err := os.WriteFile(dest, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Println(dest)
		return nil
	},
}

var (
	draftTo      string
	draftSubject string
	draftBody    string
)

var draftCmd = &cobra.Command{
	Use:   "draft <rendered-letter>",
	Short: "Wrap a rendered letter into a ready-to-send .eml draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		letter, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read letter: %w", err)
		}

		d := maildraft.Draft{
			To:             draftTo,
			Subject:        draftSubject,
			BodyMarkdown:   draftBody,
			AttachmentName: filepath.Base(args[0]),
			AttachmentType: contentTypeFor(args[0]),
			Attachment:     letter,
		}
		msg, err := d.Build()
		if err != nil {
			return err
		}

		dest := outPath
		if dest == "" {
			base := args[0]
			dest = strings.TrimSuffix(base, filepath.Ext(base)) + ".eml"
		}
		if err := os.WriteFile(dest, msg, 0o644); err != nil {
			return fmt.Errorf("write draft: %w", err)
		}
		fmt.Println(dest)
		return nil
	},
}

func buildForm() (fields.Form, error) {
	form := fields.Form{
		CandidateName: name,
		Position:      position,
		Salary:        salary,
		City:          city,
		Extras:        map[string]string{},
	}
	var err error
	if form.JoinDate, err = parseDate(joinDate); err != nil {
		return form, fmt.Errorf("invalid --join-date: %w", err)
	}
	if form.OfferDate, err = parseDate(offerDate); err != nil {
		return form, fmt.Errorf("invalid --offer-date: %w", err)
	}
	for _, kv := range extras {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return form, fmt.Errorf("invalid --extra %q, want KEY=VALUE", kv)
		}
		form.Extras[k] = v
	}
	return form, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", v)
}

func init() {
	renderCmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (.pptx or .docx)")
	renderCmd.MarkFlagRequired("template")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (default: Offer Letter - <name>.<ext>)")
	renderCmd.Flags().StringVar(&name, "name", "", "Candidate name")
	renderCmd.Flags().StringVar(&position, "position", "", "Position")
	renderCmd.Flags().StringVar(&salary, "salary", "", "Salary (digits; rendered with dot grouping)")
	renderCmd.Flags().StringVar(&joinDate, "join-date", "", "Join date (YYYY-MM-DD)")
	renderCmd.Flags().StringVar(&offerDate, "offer-date", "", "Offer date (YYYY-MM-DD)")
	renderCmd.Flags().StringVar(&city, "city", "Buenos Aires", "City")
	renderCmd.Flags().StringArrayVar(&extras, "extra", nil, "Extra placeholder KEY=VALUE (repeatable)")

	draftCmd.Flags().StringVar(&draftTo, "to", "", "Recipient address")
	draftCmd.MarkFlagRequired("to")
	draftCmd.Flags().StringVar(&draftSubject, "subject", "Offer Letter", "Subject line")
	draftCmd.Flags().StringVar(&draftBody, "body", "Please find attached your offer letter.", "Body (Markdown)")
	draftCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output .eml path")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(draftCmd)
}
