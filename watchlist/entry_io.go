package watchlist

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteEntriesJSONL writes entries as JSON lines.
func WriteEntriesJSONL(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	for i := range entries {
		entries[i].Clean()
		if err := enc.Encode(&entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadEntriesJSONL reads entries from a JSON lines stream.
func ReadEntriesJSONL(r io.Reader, fn func(Entry) error) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		e.Clean()
		if err := fn(e); err != nil {
			return err
		}
	}
}

var csvHeader = []string{"key", "raw_name", "preprocessed_name", "signature"}

// WriteEntriesCSV writes entries with a header row. Ids are written as
// storage keys ("sanctioned:<id>").
func WriteEntriesCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	rec := make([]string, len(csvHeader))
	for i := range entries {
		e := entries[i]
		e.Clean()
		rec[0] = Key(e.ID)
		rec[1] = e.Name
		rec[2] = e.PreprocessedName
		rec[3] = e.Signature
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEntriesCSV reads entries written by WriteEntriesCSV. The key column may
// also hold a bare numeric id.
func ReadEntriesCSV(r io.Reader, fn func(Entry) error) error {
	cr := csv.NewReader(bufio.NewReader(r))
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	get := func(rec []string, key string) string {
		if p, ok := idx[key]; ok && p < len(rec) {
			return rec[p]
		}
		return ""
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		key := get(rec, "key")
		id, ok := ParseKey(key)
		if !ok {
			n, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return fmt.Errorf("csv: bad key %q", key)
			}
			id = n
		}
		e := Entry{
			ID:               id,
			Name:             get(rec, "raw_name"),
			PreprocessedName: get(rec, "preprocessed_name"),
			Signature:        get(rec, "signature"),
		}
		e.Clean()
		if err := fn(e); err != nil {
			return err
		}
	}
}
