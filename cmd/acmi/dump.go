package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/OCAP2/acmi/internal/archive"
	"github.com/OCAP2/acmi/pkg/acmi"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every record of a recording in canonical form",
		Long:  "Print every record of a recording, one per line, in canonical ACMI form or as JSON.\n" +
			"Stops at the first malformed line and reports its line number.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dump(cmd, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON objects")
	return cmd
}

func dump(cmd *cobra.Command, path string, asJSON bool) error {
	r, format, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	Logger.Info("Dumping recording", "path", path, "format", format.String())

	p, err := acmi.NewParser(r)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()
	enc := json.NewEncoder(out)

	var count int
	for rec, err := range p.All() {
		if err != nil {
			Logger.Error("Dump stopped", "path", path, "records", count, "error", err)
			return fmt.Errorf("%s: %w", path, err)
		}
		count++
		if asJSON {
			if err := enc.Encode(recordJSON(rec)); err != nil {
				return err
			}
			continue
		}
		line, err := acmi.FormatRecord(rec)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, line)
	}
	Logger.Info("Dump finished", "path", path, "records", count, "version", p.Version())
	return nil
}

// recordJSON flattens a record into a JSON-friendly map. Property values are
// the unescaped wire values.
func recordJSON(rec acmi.Record) map[string]any {
	switch r := rec.(type) {
	case acmi.GlobalProperty:
		return map[string]any{
			"record": "global",
			"name":   r.Property.Name(),
			"value":  propertyValue(r.Property),
		}
	case acmi.Frame:
		return map[string]any{"record": "frame", "offset": r.Offset}
	case acmi.Update:
		props := make(map[string]string, len(r.Properties))
		for _, p := range r.Properties {
			props[p.Name()] = propertyValue(p)
		}
		return map[string]any{
			"record":     "update",
			"id":         strconv.FormatUint(r.ID, 16),
			"properties": props,
		}
	case acmi.Remove:
		return map[string]any{"record": "remove", "id": strconv.FormatUint(r.ID, 16)}
	case acmi.Event:
		return map[string]any{
			"record": "event",
			"kind":   string(r.Kind),
			"params": r.Params,
			"text":   r.Text,
		}
	}
	return map[string]any{"record": fmt.Sprintf("%T", rec)}
}

func propertyValue(p acmi.Property) string {
	if text, ok := p.(acmi.Text); ok {
		return text.Value
	}
	return p.WireValue()
}
