package commands

import (
	"encoding/json"
	"fmt"
	"io"
)

type rootOptions struct {
	Verbose bool
	Server  string
	JSON    bool
}

// HandleError prints err as JSON when --json is set and swallows it.
func (o *rootOptions) HandleError(w io.Writer, err error) error {
	if o.JSON && err != nil {
		b, merr := json.Marshal(map[string]string{"error": err.Error()})
		if merr != nil {
			return merr
		}
		_, _ = fmt.Fprintln(w, string(b))
		return nil
	}
	return err
}

func (o *rootOptions) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
