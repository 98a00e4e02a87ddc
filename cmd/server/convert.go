package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/target-creator/backend/internal/exchange"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a scene file between exchange formats",
	Long: `Reads a scene document and writes it in the format implied by the output
file's extension. Gzip input is detected automatically; an output name ending
in .gz is compressed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := convertFile(exchange.NewRegistry(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	},
}

// convertFile decodes in and re-encodes it as out.
func convertFile(codecs *exchange.Registry, in, out string) (string, error) {
	decoder, err := codecs.ForFile(in)
	if err != nil {
		return "", err
	}
	encoder, err := codecs.ForFile(out)
	if err != nil {
		return "", err
	}

	src, err := os.Open(in)
	if err != nil {
		return "", fmt.Errorf("failed to open input: %w", err)
	}
	defer src.Close()

	r, _, err := exchange.Decompress(src)
	if err != nil {
		return "", err
	}
	doc, err := decoder.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", in, err)
	}
	if err := exchange.ValidateDocument(doc); err != nil {
		return "", err
	}

	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create output: %w", err)
	}
	defer dst.Close()

	var w io.Writer = dst
	var gz *gzip.Writer
	if strings.HasSuffix(strings.ToLower(out), ".gz") {
		gz = gzip.NewWriter(dst)
		w = gz
	}
	if err := encoder.Encode(w, doc); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", out, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%s -> %s (%s): %d coordinates, %d targets, %d paths",
		in, out, encoder.Name(), len(doc.Coordinates), len(doc.Targets), len(doc.Paths)), nil
}
