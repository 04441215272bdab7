package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/OCAP2/acmi/internal/archive"
	"github.com/OCAP2/acmi/pkg/acmi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRewriteCmd() *cobra.Command {
	var zip bool

	cmd := &cobra.Command{
		Use:   "rewrite IN OUT",
		Short: "Re-serialise a recording in canonical form",
		Long:  "Parse IN and write every record to OUT in canonical ACMI form.\n" +
			"The output is zipped when --zip is set or writer.compress is true in the config.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("zip") {
				zip = viper.GetBool("writer.compress")
			}
			format := archive.FormatPlain
			if zip {
				format = archive.FormatZip
			}
			n, err := rewrite(args[0], args[1], format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", n, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&zip, "zip", false, "write a zip container ("+archive.EntryName+" entry)")
	return cmd
}

// rewrite copies in to out record by record. out is removed when the copy
// fails.
func rewrite(in, out string, format archive.Format) (n int, err error) {
	r, _, err := archive.Open(in)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	p, err := acmi.NewParser(r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", in, err)
	}

	wc, err := archive.Create(out, format)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := wc.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		if err != nil {
			_ = os.Remove(out)
			Logger.Error("Rewrite failed", "in", in, "out", out, "records", n, "error", err)
		}
	}()

	buf := bufio.NewWriter(wc)
	w, err := acmi.NewWriter(buf)
	if err != nil {
		return 0, err
	}
	for rec, err := range p.All() {
		if err != nil {
			return n, fmt.Errorf("%s: %w", in, err)
		}
		if err := w.Write(rec); err != nil {
			return n, fmt.Errorf("%s: %w", out, err)
		}
		n++
	}
	if err := buf.Flush(); err != nil {
		return n, fmt.Errorf("%s: %w", out, err)
	}

	Logger.Info("Rewrote recording", "in", in, "out", out, "records", n, "format", format.String())
	return n, nil
}
