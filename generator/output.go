package generator

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
)

// Output formats understood by Encode.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
	FormatSQL     = "sql"
)

// Batch is the generated records of one model.
type Batch struct {
	Model   schema.Model     `json:"-" yaml:"-" msgpack:"-"`
	Name    string           `json:"model" yaml:"model" msgpack:"model"`
	Records []map[string]any `json:"records" yaml:"records" msgpack:"records"`
}

// NewBatch wraps records generated for model.
func NewBatch(model schema.Model, records []map[string]any) Batch {
	return Batch{Model: model, Name: model.Name, Records: records}
}

// Encode writes batches to w in the given format. The sql format renders
// INSERT statements for dialect.
func Encode(w io.Writer, format string, dialect store.Dialect, batches []Batch) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(batches)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(batches); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(batches)
	case FormatSQL:
		for _, b := range batches {
			stmts, err := InsertSQL(dialect, b.Model, b.Records)
			if err != nil {
				return fmt.Errorf("%s: %w", b.Name, err)
			}
			fmt.Fprintf(w, "-- %s\n", b.Name)
			for _, s := range stmts {
				if _, err := fmt.Fprintln(w, s); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q (json, yaml, msgpack, sql)", format)
}
